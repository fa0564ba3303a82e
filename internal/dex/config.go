// Package dex assembles the configuration file the identity provider is started with.
package dex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"omnibus/internal/accounts"
	"omnibus/internal/config"
	"omnibus/pkg/logging"
)

// WriteConfig builds the identity provider configuration and writes it to
// paths.DexFullConfig, returning that path.
//
// The document is the base configuration followed by the static accounts found in
// env. When paths.DexCustomConfig exists it replaces the whole document.
func WriteConfig(paths config.PathsConfig, env accounts.Lookuper, hasher accounts.Hasher) (string, error) {
	base, err := os.ReadFile(paths.DexBaseConfig)
	if err != nil {
		return "", fmt.Errorf("failed to read base dex config: %w", err)
	}
	block, err := accounts.Block(env, hasher)
	if err != nil {
		return "", err
	}
	doc := appendBlock(string(base), block)

	custom, err := os.ReadFile(paths.DexCustomConfig)
	switch {
	case err == nil:
		logging.Info("Dex", "Using %s", paths.DexCustomConfig)
		doc = string(custom)
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("Dex", "No %s", paths.DexCustomConfig)
	default:
		return "", fmt.Errorf("failed to read custom dex config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(paths.DexFullConfig), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", paths.DexFullConfig, err)
	}
	// The file carries password hashes.
	if err := os.WriteFile(paths.DexFullConfig, []byte(doc), 0o600); err != nil {
		return "", fmt.Errorf("failed to write dex config: %w", err)
	}
	logging.Debug("Dex", "Wrote %s", paths.DexFullConfig)
	return paths.DexFullConfig, nil
}

// appendBlock joins base and block so block always starts on a new line.
func appendBlock(base, block string) string {
	if block == "" {
		return base
	}
	if base != "" && base[len(base)-1] != '\n' {
		base += "\n"
	}
	return base + block
}
