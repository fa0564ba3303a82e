package dex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnibus/internal/config"
)

type mapEnv map[string]string

func (m mapEnv) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

type prefixHasher struct{}

func (prefixHasher) Hash(password string) (string, error) {
	return "hashed-" + password, nil
}

func testPaths(t *testing.T) config.PathsConfig {
	t.Helper()
	dir := t.TempDir()
	return config.PathsConfig{
		DexBaseConfig:   filepath.Join(dir, "settings", "dex.yaml"),
		DexCustomConfig: filepath.Join(dir, "custom", "dex.yaml"),
		DexFullConfig:   filepath.Join(dir, "persist", "dex-full.yaml"),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWriteConfig(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		custom string
		env    mapEnv
		want   string
	}{
		{
			name: "base only",
			base: "issuer: x\n",
			env:  mapEnv{},
			want: "issuer: x\n",
		},
		{
			name: "base with accounts",
			base: "issuer: x\n",
			env:  mapEnv{"EMAIL": "a@example.com", "PASSWORD": "pw"},
			want: "issuer: x\nenablePasswordDB: true\nstaticPasswords:\n  - email: a@example.com\n    hash: hashed-pw\n\n",
		},
		{
			name: "base without trailing newline",
			base: "issuer: x",
			env:  mapEnv{"EMAIL": "a@example.com", "PASSWORD": "pw"},
			want: "issuer: x\nenablePasswordDB: true\nstaticPasswords:\n  - email: a@example.com\n    hash: hashed-pw\n\n",
		},
		{
			name:   "custom replaces everything",
			base:   "issuer: x\n",
			custom: "issuer: custom\n",
			env:    mapEnv{"EMAIL": "a@example.com", "PASSWORD": "pw"},
			want:   "issuer: custom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := testPaths(t)
			writeFile(t, paths.DexBaseConfig, tt.base)
			if tt.custom != "" {
				writeFile(t, paths.DexCustomConfig, tt.custom)
			}

			path, err := WriteConfig(paths, tt.env, prefixHasher{})
			require.NoError(t, err)
			assert.Equal(t, paths.DexFullConfig, path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestWriteConfig_MissingBaseIsFatal(t *testing.T) {
	paths := testPaths(t)
	writeFile(t, paths.DexCustomConfig, "issuer: custom\n")

	_, err := WriteConfig(paths, mapEnv{}, prefixHasher{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, paths.DexFullConfig)
}
