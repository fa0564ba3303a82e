package config

import (
	"time"
)

// OmnibusConfig is the top-level configuration structure for the orchestrator itself.
// It describes where things live inside the container and how services are launched;
// the deployment's user-facing settings come from the environment instead.
type OmnibusConfig struct {
	Paths       PathsConfig     `yaml:"paths"`
	Secrets     SecretsConfig   `yaml:"secrets"`
	Readiness   ReadinessConfig `yaml:"readiness"`
	Services    ServicesConfig  `yaml:"services"`
	SettleDelay time.Duration   `yaml:"settleDelay,omitempty" validate:"gte=0"`
	LogLevel    string          `yaml:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
}

// PathsConfig holds the fixed file system locations used during startup.
// State paths left empty are placed under PersistDir.
type PathsConfig struct {
	PersistDir      string `yaml:"persistDir,omitempty" validate:"required"`      // e.g. /persist
	SecretsDir      string `yaml:"secretsDir,omitempty" validate:"required"`      // one file per generated secret
	AuthDir         string `yaml:"authDir,omitempty" validate:"required"`         // created at startup
	DexBaseConfig   string `yaml:"dexBaseConfig,omitempty" validate:"required"`   // base identity provider config
	DexCustomConfig string `yaml:"dexCustomConfig,omitempty" validate:"required"` // operator override, replaces everything
	DexFullConfig   string `yaml:"dexFullConfig,omitempty" validate:"required"`   // generated file handed to dex
	TraefikConfig   string `yaml:"traefikConfig,omitempty" validate:"required"`   // file provider for the proxy
	AcmeStorage     string `yaml:"acmeStorage,omitempty" validate:"required"`     // ACME state when HTTPS=auto
}

// SecretBackend selects where generated secrets are persisted.
type SecretBackend string

const (
	SecretBackendFile       SecretBackend = "file"
	SecretBackendKubernetes SecretBackend = "kubernetes"
)

// SecretsConfig selects and configures the secret store.
type SecretsConfig struct {
	Backend    SecretBackend `yaml:"backend,omitempty" validate:"required,oneof=file kubernetes"`
	Namespace  string        `yaml:"namespace,omitempty" validate:"required_if=Backend kubernetes"`
	SecretName string        `yaml:"secretName,omitempty" validate:"required_if=Backend kubernetes"`
	// KubeContext selects a kubeconfig context instead of the in-cluster service account.
	KubeContext string `yaml:"kubeContext,omitempty"`
}

// ReadinessConfig tunes the readiness gate used before starting dependent services.
type ReadinessConfig struct {
	InitialDelay   time.Duration `yaml:"initialDelay,omitempty" validate:"gt=0"`
	Factor         float64       `yaml:"factor,omitempty" validate:"gte=1"`
	MaxDelay       time.Duration `yaml:"maxDelay,omitempty" validate:"gtfield=InitialDelay"`
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty" validate:"gt=0"`
}

// ServicesConfig holds the executable for each launched service.
// Arguments derived from settings are appended by the launcher.
type ServicesConfig struct {
	Grist   []string `yaml:"grist,omitempty" validate:"required,min=1"`
	Traefik []string `yaml:"traefik,omitempty" validate:"required,min=1"`
	Whoami  []string `yaml:"whoami,omitempty" validate:"required,min=1"`
	Dex     []string `yaml:"dex,omitempty" validate:"required,min=1"`
	TFA     []string `yaml:"tfa,omitempty" validate:"required,min=1"`
}
