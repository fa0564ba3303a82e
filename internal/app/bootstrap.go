package app

import (
	"context"
	"fmt"
	"os"

	"omnibus/internal/config"
	"omnibus/internal/reporting"
	"omnibus/internal/settings"
	"omnibus/pkg/logging"
)

// Application is the main application structure that bootstraps and runs the stack
type Application struct {
	config   *Config
	services *Services
	settings *settings.Settings
	runID    string
}

// NewApplication loads the configuration, prepares the persistent directories and
// derives the settings. Nothing is launched yet; every configuration error surfaces here.
func NewApplication(ctx context.Context, cfg *Config) (*Application, error) {
	logging.InitForCLI(levelFor(cfg, ""), os.Stderr)

	var omnibusCfg config.OmnibusConfig
	var err error

	if cfg.ConfigPath != "" {
		omnibusCfg, err = config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", cfg.ConfigPath, err)
		}
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		omnibusCfg, err = config.LoadConfig()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}
	cfg.OmnibusConfig = &omnibusCfg

	// The configured level applies unless --debug asked for more.
	logging.InitForCLI(levelFor(cfg, omnibusCfg.LogLevel), os.Stderr)

	runID := reporting.NewRunID()
	logging.Debug("Bootstrap", "Run %s, part %s", runID, cfg.Part)

	if err := os.MkdirAll(omnibusCfg.Paths.AuthDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", omnibusCfg.Paths.AuthDir, err)
	}

	services, err := InitializeServices(&omnibusCfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	environ := cfg.Environ
	if environ == nil {
		environ = os.Environ()
	}
	s, err := settings.Derive(ctx, settings.NewEnv(environ), services.Store)
	if err != nil {
		return nil, err
	}

	return &Application{
		config:   cfg,
		services: services,
		settings: s,
		runID:    runID,
	}, nil
}

// Settings returns the derived settings
func (a *Application) Settings() *settings.Settings {
	return a.settings
}

func levelFor(cfg *Config, configured string) logging.LogLevel {
	if cfg.Debug {
		return logging.LevelDebug
	}
	return logging.ParseLevel(configured)
}
