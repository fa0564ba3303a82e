package config

import (
	"path/filepath"
	"time"
)

// GetDefaultConfig returns the configuration matching the container image layout.
// The state paths under persistDir stay empty until the layers have been applied.
func GetDefaultConfig() OmnibusConfig {
	return OmnibusConfig{
		Paths: PathsConfig{
			PersistDir:      "/persist",
			DexBaseConfig:   "/settings/dex.yaml",
			DexCustomConfig: "/custom/dex.yaml",
			TraefikConfig:   "/settings/traefik.yaml",
		},
		Secrets: SecretsConfig{
			Backend: SecretBackendFile,
		},
		Readiness: ReadinessConfig{
			InitialDelay:   100 * time.Millisecond,
			Factor:         1.2,
			MaxDelay:       5 * time.Second,
			RequestTimeout: 5 * time.Second,
		},
		Services: ServicesConfig{
			Grist:   []string{"/grist/sandbox/run.sh"},
			Traefik: []string{"traefik"},
			Whoami:  []string{"whoami"},
			Dex:     []string{"dex-entrypoint", "dex", "serve"},
			TFA:     []string{"traefik-forward-auth"},
		},
		SettleDelay: time.Second,
		LogLevel:    "info",
	}
}

// resolvePaths fills the state paths that no layer set from PersistDir.
func (p *PathsConfig) resolvePaths() {
	if p.PersistDir == "" {
		return
	}
	for _, d := range []struct {
		dst  *string
		name string
	}{
		{&p.SecretsDir, "params"},
		{&p.AuthDir, "auth"},
		{&p.DexFullConfig, "dex-full.yaml"},
		{&p.AcmeStorage, "acme.json"},
	} {
		if *d.dst == "" {
			*d.dst = filepath.Join(p.PersistDir, d.name)
		}
	}
}
