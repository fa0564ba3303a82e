package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"omnibus/pkg/logging"
)

// For mocking in tests
var osStat = os.Stat

const (
	imageConfigPath  = "/settings/omnibus.yaml"
	customConfigPath = "/custom/omnibus.yaml"
)

// LoadConfig loads the orchestrator configuration by layering the built-in defaults,
// the file shipped with the image and the operator's custom file.
// Missing layer files are skipped; malformed ones are an error.
func LoadConfig() (OmnibusConfig, error) {
	config := GetDefaultConfig()

	for _, layer := range []func() string{getImageConfigPath, getCustomConfigPath} {
		path := layer()
		if _, err := osStat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := loadConfigFromFile(path, &config); err != nil {
			return OmnibusConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		logging.Debug("Config", "Applied configuration layer %s", path)
	}

	config.Paths.resolvePaths()
	if err := config.Validate(); err != nil {
		return OmnibusConfig{}, err
	}
	return config, nil
}

// LoadConfigFromPath loads the defaults overlaid with a single explicit file.
// The image and custom layers are not consulted.
func LoadConfigFromPath(path string) (OmnibusConfig, error) {
	config := GetDefaultConfig()
	if err := loadConfigFromFile(path, &config); err != nil {
		return OmnibusConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	config.Paths.resolvePaths()
	if err := config.Validate(); err != nil {
		return OmnibusConfig{}, err
	}
	return config, nil
}

var getImageConfigPath = func() string {
	return imageConfigPath
}

var getCustomConfigPath = func() string {
	return customConfigPath
}

// loadConfigFromFile decodes a YAML file on top of config.
// Keys absent from the file keep the value of the lower layers; lists are replaced whole.
func loadConfigFromFile(filePath string, config *OmnibusConfig) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
