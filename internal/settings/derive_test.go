package settings

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyStore hands out "<key>-value" and records every request.
type spyStore struct {
	requested []string
	err       error
}

func (s *spyStore) Obtain(_ context.Context, name string) (string, error) {
	s.requested = append(s.requested, name)
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%s-value", name), nil
}

func baseEnv() Env {
	return Env{
		"URL":   "https://grist.example.com",
		"EMAIL": "owner@example.com",
		"TEAM":  "cool-beans",
		"HTTPS": "auto",
	}
}

func TestDerive_Defaults(t *testing.T) {
	s, err := Derive(context.Background(), baseEnv(), &spyStore{})
	require.NoError(t, err)

	expected := map[string]string{
		"GRIST_SANDBOX_FLAVOR":           "gvisor",
		"GRIST_HIDE_UI_ELEMENTS":         "helpCenter,billing,templates,multiSite,multiAccounts",
		"GRIST_ORG_IN_PATH":              "false",
		"GRIST_FORWARD_AUTH_HEADER":      "X-Forwarded-User",
		"GRIST_FORCE_LOGIN":              "true",
		"GRIST_FORWARD_AUTH_LOGOUT_PATH": "_oauth/logout",
		"DEFAULT_PROVIDER":               "oidc",
		"APP_HOME_URL":                   "https://grist.example.com",
		"GRIST_DEFAULT_EMAIL":            "owner@example.com",
		"GRIST_SINGLE_ORG":               "cool-beans",
		"PROVIDERS_OIDC_ISSUER_URL":      "https://grist.example.com/dex",
		"LOGOUT_REDIRECT":                "https://grist.example.com/signed-out",
	}
	for name, want := range expected {
		got, ok := s.Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestDerive_OperatorValuesWinOverDefaults(t *testing.T) {
	env := baseEnv()
	env["GRIST_SANDBOX_FLAVOR"] = "unsandboxed"
	env["GRIST_FORCE_LOGIN"] = ""

	s, err := Derive(context.Background(), env, &spyStore{})
	require.NoError(t, err)

	flavor, _ := s.Lookup("GRIST_SANDBOX_FLAVOR")
	assert.Equal(t, "unsandboxed", flavor)
	forceLogin, ok := s.Lookup("GRIST_FORCE_LOGIN")
	assert.True(t, ok)
	assert.Equal(t, "", forceLogin)
}

func TestDerive_DoesNotModifyInput(t *testing.T) {
	env := baseEnv()
	_, err := Derive(context.Background(), env, &spyStore{})
	require.NoError(t, err)
	assert.Equal(t, baseEnv(), env)
}

func TestDerive_Synonyms(t *testing.T) {
	env := Env{
		"APP_HOME_URL":        "http://localhost:8484",
		"GRIST_DEFAULT_EMAIL": "me@example.com",
		"TEAM":                "team",
		"GRIST_SINGLE_ORG":    "team",
	}
	s, err := Derive(context.Background(), env, &spyStore{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8484", s.URL)
	assert.Equal(t, "me@example.com", s.Email)
	assert.Equal(t, "team", s.Team)
}

func TestDerive_ConfigurationErrorsBeforeSecrets(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Env)
		wantErr error
		errMsg  string
	}{
		{
			name:    "missing URL",
			mutate:  func(e Env) { delete(e, "URL") },
			wantErr: ErrMissingSetting,
			errMsg:  "Please define URL so Grist knows how users will access it.",
		},
		{
			name:    "empty EMAIL",
			mutate:  func(e Env) { e["EMAIL"] = "" },
			wantErr: ErrMissingSetting,
			errMsg:  "Please provide an EMAIL, needed for certificates and initial login.",
		},
		{
			name:    "missing TEAM",
			mutate:  func(e Env) { delete(e, "TEAM") },
			wantErr: ErrMissingSetting,
			errMsg:  "Please set TEAM, omnibus version of Grist expects it.",
		},
		{
			name:    "synonym conflict",
			mutate:  func(e Env) { e["GRIST_DEFAULT_EMAIL"] = "other@example.com" },
			wantErr: ErrSynonymConflict,
			errMsg:  "EMAIL and GRIST_DEFAULT_EMAIL are synonyms and should be the same",
		},
		{
			name:    "brittle conflict",
			mutate:  func(e Env) { e["GRIST_FORWARD_AUTH_LOGOUT_PATH"] = "logout" },
			wantErr: ErrBrittleConflict,
			errMsg:  "GRIST_FORWARD_AUTH_LOGOUT_PATH",
		},
		{
			name:    "unsupported TLS mode",
			mutate:  func(e Env) { e["HTTPS"] = "letsencrypt" },
			wantErr: ErrUnsupportedTLSMode,
			errMsg:  "HTTPS environment variable must be set to: auto, external, or manual",
		},
		{
			name:    "missing TLS mode",
			mutate:  func(e Env) { delete(e, "HTTPS") },
			wantErr: ErrUnsupportedTLSMode,
		},
		{
			name:    "unsupported scheme",
			mutate:  func(e Env) { e["URL"] = "ftp://grist.example.com" },
			wantErr: ErrInvalidURL,
		},
		{
			name:    "unparsable URL",
			mutate:  func(e Env) { e["URL"] = "https://grist.example.com:port" },
			wantErr: ErrInvalidURL,
		},
		{
			name:    "port out of range",
			mutate:  func(e Env) { e["URL"] = "http://grist.example.com:70000" },
			wantErr: ErrInvalidSettings,
			errMsg:  "ExtPort is out of range: 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			tt.mutate(env)
			store := &spyStore{}

			s, err := Derive(context.Background(), env, store)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, s)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
			assert.Empty(t, store.requested, "no secret may be generated")
		})
	}
}

func TestDerive_Secrets(t *testing.T) {
	t.Run("generated when absent", func(t *testing.T) {
		store := &spyStore{}
		s, err := Derive(context.Background(), baseEnv(), store)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"GRIST_SESSION_SECRET",
			"PROVIDERS_OIDC_CLIENT_ID",
			"PROVIDERS_OIDC_CLIENT_SECRET",
			"TFA_SECRET",
		}, store.requested)
		assert.Equal(t, "GRIST_SESSION_SECRET-value", s.SessionSecret)
		assert.Equal(t, "PROVIDERS_OIDC_CLIENT_ID-value", s.OIDCClientID)
		assert.Equal(t, "PROVIDERS_OIDC_CLIENT_SECRET-value", s.OIDCClientSecret)
		assert.Equal(t, "TFA_SECRET-value", s.SidecarSecret)
	})

	t.Run("operator values kept", func(t *testing.T) {
		env := baseEnv()
		env["GRIST_SESSION_SECRET"] = "mine"
		env["SECRET"] = "cookie"
		store := &spyStore{}

		s, err := Derive(context.Background(), env, store)
		require.NoError(t, err)
		assert.Equal(t, []string{"PROVIDERS_OIDC_CLIENT_ID", "PROVIDERS_OIDC_CLIENT_SECRET"}, store.requested)
		assert.Equal(t, "mine", s.SessionSecret)
		assert.Equal(t, "cookie", s.SidecarSecret)
	})

	t.Run("store failure is fatal", func(t *testing.T) {
		store := &spyStore{err: errors.New("disk full")}
		_, err := Derive(context.Background(), baseEnv(), store)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestDerive_Network(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantHost   string
		wantExt    int
		wantDex    int
		wantGrist  int
		wantTFA    int
		wantWhoami int
	}{
		{
			name: "public host without port", url: "https://grist.example.com",
			wantHost: "grist.example.com", wantExt: 9999, wantDex: 9999,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
		{
			name: "public host with port", url: "http://grist.example.com:8484",
			wantHost: "grist.example.com", wantExt: 8484, wantDex: 9999,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
		{
			name: "localhost ties dex port", url: "http://localhost:8484",
			wantHost: "localhost", wantExt: 8484, wantDex: 8484,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
		{
			name: "dex port starting with 1 moves services", url: "http://localhost:13000",
			wantHost: "localhost", wantExt: 13000, wantDex: 13000,
			wantGrist: 27100, wantTFA: 27101, wantWhoami: 27102,
		},
		{
			name: "localhost on proxy port keeps dex apart", url: "https://localhost:80",
			wantHost: "localhost", wantExt: 80, wantDex: 9999,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
		{
			name: "scheme default port is absent", url: "http://localhost:80",
			wantHost: "localhost", wantExt: 9999, wantDex: 9999,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
		{
			name: "ip address", url: "http://192.168.1.10:8080",
			wantHost: "192.168.1.10", wantExt: 8080, wantDex: 9999,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
		{
			name: "underscore in host", url: "http://grist_app:8484",
			wantHost: "grist_app", wantExt: 8484, wantDex: 9999,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
		{
			name: "explicit port zero", url: "http://example.com:0",
			wantHost: "example.com", wantExt: 0, wantDex: 9999,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
		{
			name: "fully qualified host", url: "https://grist.example.com.",
			wantHost: "grist.example.com.", wantExt: 9999, wantDex: 9999,
			wantGrist: 17100, wantTFA: 17101, wantWhoami: 17102,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			env["URL"] = tt.url
			s, err := Derive(context.Background(), env, &spyStore{})
			require.NoError(t, err)

			assert.Equal(t, tt.wantHost, s.AppHost)
			assert.Equal(t, tt.wantExt, s.ExtPort)
			assert.Equal(t, tt.wantDex, s.DexPort)
			assert.Equal(t, tt.wantGrist, s.GristPort)
			assert.Equal(t, tt.wantTFA, s.TFAPort)
			assert.Equal(t, tt.wantWhoami, s.WhoamiPort)

			dex, _ := s.Lookup("DEX_PORT")
			assert.Equal(t, fmt.Sprint(tt.wantDex), dex)
		})
	}
}

func TestDerive_TLS(t *testing.T) {
	tests := []struct {
		mode    string
		wantTLS string
	}{
		{mode: "auto", wantTLS: "{ certResolver: letsencrypt }"},
		{mode: "manual", wantTLS: "true"},
		{mode: "external", wantTLS: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			env := baseEnv()
			env["HTTPS"] = tt.mode
			s, err := Derive(context.Background(), env, &spyStore{})
			require.NoError(t, err)

			assert.Equal(t, TLSMode(tt.mode), s.HTTPSMode)
			assert.Equal(t, tt.wantTLS, s.TLS)
			assert.True(t, s.UseHTTPS)
			useHTTPS, _ := s.Lookup("USE_HTTPS")
			assert.Equal(t, "true", useHTTPS)
		})
	}

	t.Run("http URL ignores HTTPS", func(t *testing.T) {
		env := baseEnv()
		env["URL"] = "http://localhost:8484"
		env["HTTPS"] = "bogus"
		s, err := Derive(context.Background(), env, &spyStore{})
		require.NoError(t, err)

		assert.Empty(t, s.HTTPSMode)
		assert.False(t, s.UseHTTPS)
		_, ok := s.Lookup("TLS")
		assert.False(t, ok)
	})
}

func TestSettings_Redacted(t *testing.T) {
	env := baseEnv()
	env["PASSWORD"] = "hunter2"
	env["PASSWORD3"] = "hunter3"
	s, err := Derive(context.Background(), env, &spyStore{})
	require.NoError(t, err)

	redactedEnv := s.Redacted()
	for _, name := range []string{"GRIST_SESSION_SECRET", "PROVIDERS_OIDC_CLIENT_SECRET", "SECRET", "PASSWORD", "PASSWORD3"} {
		assert.Equal(t, "<redacted>", redactedEnv[name], name)
	}
	assert.Equal(t, "PROVIDERS_OIDC_CLIENT_ID-value", redactedEnv["PROVIDERS_OIDC_CLIENT_ID"])
	assert.Equal(t, "owner@example.com", redactedEnv["EMAIL"])
}

func TestSettings_EnvironIsFrozen(t *testing.T) {
	s, err := Derive(context.Background(), baseEnv(), &spyStore{})
	require.NoError(t, err)

	first := s.Environ()
	require.NotEmpty(t, first)
	first[0] = "MUTATED=1"

	assert.NotContains(t, s.Environ(), "MUTATED=1")
	assert.Contains(t, s.Environ(), "DEFAULT_PROVIDER=oidc")
}
