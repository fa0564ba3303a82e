package app

import (
	"omnibus/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Part selects which services to start
	Part string

	// Debug settings
	Debug bool

	// ConfigPath replaces the layered configuration with a single file when set
	ConfigPath string

	// Environ is the environment the settings are derived from, os.Environ() when nil
	Environ []string

	// Orchestrator configuration, filled in by NewApplication
	OmnibusConfig *config.OmnibusConfig
}

// NewConfig creates a new application configuration
func NewConfig(part string, debug bool, configPath string) *Config {
	return &Config{
		Part:       part,
		Debug:      debug,
		ConfigPath: configPath,
	}
}
