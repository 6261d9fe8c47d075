package config

import (
	"github.com/duckbook/duckbook/duckbook"
)

// WebAppConfig wraps the application config with web-only settings.
type WebAppConfig struct {
	Config      *duckbook.Config
	Debug       bool
	Environment string
}

func NewWebAppConfig(cfg *duckbook.Config, debug bool) *WebAppConfig {
	environment := cfg.Web.Environment
	if environment == "" {
		environment = "production"
		if debug {
			environment = "development"
		}
	}

	return &WebAppConfig{
		Config:      cfg,
		Debug:       debug,
		Environment: environment,
	}
}

func (w *WebAppConfig) SessionSecret() string {
	return w.Config.Web.SessionSecret
}
