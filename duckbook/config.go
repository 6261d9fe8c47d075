package duckbook

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/duckbook/duckbook/duckbook/ducklevel"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in the leveling knobs when the [ducks] section
// is missing from the config file.
func (c *Config) applyDefaults() {
	if c.Ducks == (DucksConfig{}) {
		def := ducklevel.NewDefaultConfig()
		c.Ducks.MaxLevel = def.MaxLevel
		c.Ducks.WarnLevel = def.WarnLevel
	}
	if c.Ducks.MinSimilarity == 0 {
		c.Ducks.MinSimilarity = 75
	}
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	Web    WebConfig    `toml:"web"`
	DB     DBConfig     `toml:"db"`
	Ducks  DucksConfig  `toml:"ducks"`
	Spaces SpacesConfig `toml:"spaces"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type WebConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SessionSecret string `toml:"session_secret"`
	Environment   string `toml:"environment"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// DucksConfig carries the duck leveling and matching knobs.
type DucksConfig struct {
	MaxLevel      int `toml:"max_level"`
	WarnLevel     int `toml:"warn_level"`
	MinSimilarity int `toml:"min_similarity"`
}

// SpacesConfig configures the S3-compatible photo bucket.
type SpacesConfig struct {
	Key       string `toml:"key"`
	Secret    string `toml:"secret"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	PhotoRoot string `toml:"photoroot"`
}

func (c *Config) Validate() error {
	if err := c.LevelConfig().Validate(); err != nil {
		return fmt.Errorf("invalid ducks config: %w", err)
	}
	if c.Ducks.MinSimilarity <= 0 || c.Ducks.MinSimilarity > 100 {
		return fmt.Errorf("invalid ducks config: min_similarity %d out of range (0, 100]", c.Ducks.MinSimilarity)
	}
	if c.Web.SessionSecret == "" {
		return fmt.Errorf("invalid web config: session_secret must be set")
	}
	return nil
}

// LevelConfig builds the level calculator configuration from the
// [ducks] section.
func (c *Config) LevelConfig() *ducklevel.Config {
	return &ducklevel.Config{
		MaxLevel:  c.Ducks.MaxLevel,
		WarnLevel: c.Ducks.WarnLevel,
	}
}
