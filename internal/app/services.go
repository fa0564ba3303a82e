package app

import (
	"fmt"

	"omnibus/internal/config"
	"omnibus/internal/launcher"
	"omnibus/internal/readiness"
	"omnibus/internal/secrets"
	"omnibus/pkg/logging"
)

// newKubeClientset is swapped in tests.
var newKubeClientset = secrets.NewClientset

// Services holds the collaborators the startup sequence runs with
type Services struct {
	Store   secrets.Store
	Gate    launcher.Waiter
	Starter launcher.Starter
}

// InitializeServices creates the secret store, readiness gate and process starter
func InitializeServices(cfg *config.OmnibusConfig) (*Services, error) {
	store, err := newSecretStore(cfg)
	if err != nil {
		return nil, err
	}
	return &Services{
		Store:   store,
		Gate:    readiness.NewGate(cfg.Readiness),
		Starter: launcher.NewExecStarter(),
	}, nil
}

func newSecretStore(cfg *config.OmnibusConfig) (secrets.Store, error) {
	switch cfg.Secrets.Backend {
	case config.SecretBackendKubernetes:
		client, err := newKubeClientset(cfg.Secrets.KubeContext)
		if err != nil {
			return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
		}
		logging.Info("Bootstrap", "Keeping secrets in %s/%s", cfg.Secrets.Namespace, cfg.Secrets.SecretName)
		return secrets.NewKubeStore(client, cfg.Secrets.Namespace, cfg.Secrets.SecretName, nil), nil
	default:
		logging.Debug("Bootstrap", "Keeping secrets in %s", cfg.Paths.SecretsDir)
		return secrets.NewFileStore(cfg.Paths.SecretsDir, nil), nil
	}
}
