package ducklevel

import "math"

// Calculator converts between competence levels and accumulated
// booking minutes. Down minutes weigh a tenth of up minutes.
type Calculator struct {
	config *Config
}

func NewCalculator(config *Config) *Calculator {
	return &Calculator{config: config}
}

func (c *Calculator) MaxLevel() int {
	return c.config.MaxLevel
}

func (c *Calculator) WarnLevel() int {
	return c.config.WarnLevel
}

// LevelToUpMinutes returns the amount of successful booking minutes
// that place a duck exactly at the given level.
func (c *Calculator) LevelToUpMinutes(level int) int64 {
	if level == 0 {
		return 0
	}
	return 2 * int64(math.Pow(10, float64(level)))
}

// LevelToDownMinutes returns the amount of unsuccessful booking
// minutes that place a duck exactly at the given level.
func (c *Calculator) LevelToDownMinutes(level int) int64 {
	if level == 0 {
		return 0
	}
	return 20 * int64(math.Pow(10, float64(level)))
}

// MinutesToLevel derives the level from accumulated minutes. The down
// minute division is real-valued, and exact power-of-ten boundaries
// round down.
func (c *Calculator) MinutesToLevel(upMinutes, downMinutes int64) int {
	effective := float64(upMinutes) + float64(downMinutes)/10

	if effective <= 0 {
		return 0
	}

	level := int(math.Floor(math.Log10(effective)))
	if level > c.config.MaxLevel {
		return c.config.MaxLevel
	}
	if level < 0 {
		return 0
	}
	return level
}
