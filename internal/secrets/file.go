package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"omnibus/pkg/logging"
)

// FileStore persists each secret as a plain text file named after its key.
type FileStore struct {
	dir      string
	generate Generator
}

// NewFileStore creates a store rooted at dir. A nil generator uses GenerateToken.
func NewFileStore(dir string, generate Generator) *FileStore {
	if generate == nil {
		generate = GenerateToken
	}
	return &FileStore{dir: dir, generate: generate}
}

// Obtain returns the persisted value for name, generating and writing it on first use.
func (s *FileStore) Obtain(_ context.Context, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create secrets directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		value, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate secret %s: %w", name, err)
		}
		if err := os.WriteFile(path, []byte(strings.TrimSpace(value)), 0o600); err != nil {
			return "", fmt.Errorf("failed to persist secret %s: %w", name, err)
		}
		logging.Info("Secrets", "Generated new value for %s", name)
	} else if err != nil {
		return "", fmt.Errorf("failed to stat secret %s: %w", name, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
