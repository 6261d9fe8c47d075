package ducklevel

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "default", config: *NewDefaultConfig(), wantErr: false},
		{name: "zero max level", config: Config{MaxLevel: 0, WarnLevel: 0}, wantErr: true},
		{name: "negative warn level", config: Config{MaxLevel: 5, WarnLevel: -1}, wantErr: true},
		{name: "warn at max", config: Config{MaxLevel: 3, WarnLevel: 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLevelToMinutes(t *testing.T) {
	calc := NewCalculator(NewDefaultConfig())

	wantUp := []int64{0, 20, 200, 2000, 20000, 200000}
	wantDown := []int64{0, 200, 2000, 20000, 200000, 2000000}

	for level := 0; level <= 5; level++ {
		if got := calc.LevelToUpMinutes(level); got != wantUp[level] {
			t.Errorf("LevelToUpMinutes(%d) = %d, want %d", level, got, wantUp[level])
		}
		if got := calc.LevelToDownMinutes(level); got != wantDown[level] {
			t.Errorf("LevelToDownMinutes(%d) = %d, want %d", level, got, wantDown[level])
		}
	}
}

func TestMinutesToLevelRoundTrip(t *testing.T) {
	calc := NewCalculator(NewDefaultConfig())

	for level := 1; level <= calc.MaxLevel(); level++ {
		if got := calc.MinutesToLevel(calc.LevelToUpMinutes(level), 0); got != level {
			t.Errorf("MinutesToLevel(up(%d), 0) = %d, want %d", level, got, level)
		}
		if got := calc.MinutesToLevel(0, calc.LevelToDownMinutes(level)); got != level {
			t.Errorf("MinutesToLevel(0, down(%d)) = %d, want %d", level, got, level)
		}
	}
}

func TestMinutesToLevelClamp(t *testing.T) {
	calc := NewCalculator(NewDefaultConfig())
	maxUp := calc.LevelToUpMinutes(calc.MaxLevel())
	maxDown := calc.LevelToDownMinutes(calc.MaxLevel())

	tests := []struct {
		name string
		up   int64
		down int64
		want int
	}{
		{name: "zero minutes", up: 0, down: 0, want: 0},
		{name: "below first boundary", up: 19, down: 0, want: 1},
		{name: "first boundary", up: 20, down: 0, want: 1},
		{name: "second boundary", up: 200, down: 0, want: 2},
		{name: "fractional down minutes", up: 0, down: 5, want: 0},
		{name: "at max", up: maxUp, down: 0, want: calc.MaxLevel()},
		{name: "above max", up: maxUp + 1, down: 0, want: calc.MaxLevel()},
		{name: "far above max", up: maxUp * 1000, down: 0, want: calc.MaxLevel()},
		{name: "down at max", up: 0, down: maxDown, want: calc.MaxLevel()},
		{name: "down above max", up: 0, down: maxDown + 1, want: calc.MaxLevel()},
		{name: "both at max", up: maxUp, down: maxDown, want: calc.MaxLevel()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.MinutesToLevel(tt.up, tt.down); got != tt.want {
				t.Errorf("MinutesToLevel(%d, %d) = %d, want %d", tt.up, tt.down, got, tt.want)
			}
		})
	}
}

func TestMinutesToLevelMonotonic(t *testing.T) {
	calc := NewCalculator(NewDefaultConfig())

	prev := 0
	for m := int64(0); m <= calc.LevelToUpMinutes(calc.MaxLevel())+100; m += 7 {
		level := calc.MinutesToLevel(m, 0)
		if level < prev {
			t.Fatalf("MinutesToLevel(%d, 0) = %d, below previous level %d", m, level, prev)
		}
		prev = level
	}
}
