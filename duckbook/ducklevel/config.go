package ducklevel

import "fmt"

type Config struct {
	// Highest level a duck can reach in any competence
	MaxLevel int

	// Bookings at or below this level trigger a warning unless forced
	WarnLevel int
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxLevel:  5,
		WarnLevel: 2,
	}
}

func (c *Config) Validate() error {
	if c.MaxLevel <= 0 {
		return fmt.Errorf("max level must be greater than zero, got %d", c.MaxLevel)
	}
	if c.WarnLevel < 0 {
		return fmt.Errorf("warn level must not be negative, got %d", c.WarnLevel)
	}
	if c.WarnLevel >= c.MaxLevel {
		return fmt.Errorf("warn level %d must be below max level %d", c.WarnLevel, c.MaxLevel)
	}
	return nil
}
