package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Names of the variables the derivation reads or writes.
const (
	VarURL          = "URL"
	VarAppHomeURL   = "APP_HOME_URL"
	VarEmail        = "EMAIL"
	VarDefaultEmail = "GRIST_DEFAULT_EMAIL"
	VarTeam         = "TEAM"
	VarSingleOrg    = "GRIST_SINGLE_ORG"
	VarHTTPS        = "HTTPS"

	VarAppHost    = "APP_HOST"
	VarExtPort    = "EXT_PORT"
	VarDexPort    = "DEX_PORT"
	VarGristPort  = "GRIST_PORT"
	VarTFAPort    = "TFA_PORT"
	VarWhoamiPort = "WHOAMI_PORT"

	VarSessionSecret    = "GRIST_SESSION_SECRET"
	VarOIDCClientID     = "PROVIDERS_OIDC_CLIENT_ID"
	VarOIDCClientSecret = "PROVIDERS_OIDC_CLIENT_SECRET"
	VarOIDCIssuerURL    = "PROVIDERS_OIDC_ISSUER_URL"
	VarSidecarSecret    = "SECRET"
	VarLogoutRedirect   = "LOGOUT_REDIRECT"
	VarTLS              = "TLS"
	VarUseHTTPS         = "USE_HTTPS"
)

const redacted = "<redacted>"

// secretVars are hidden by Redacted. PASSWORD{n} variables are hidden as well.
var secretVars = map[string]bool{
	VarSessionSecret:    true,
	VarOIDCClientSecret: true,
	VarSidecarSecret:    true,
}

// Settings is the validated result of the derivation. It is read-only once returned.
type Settings struct {
	URL   string `validate:"required,url"`
	Email string `validate:"required"`
	Team  string `validate:"required"`

	AppHost    string `validate:"required"`
	ExtPort    int    `validate:"min=0,max=65535"`
	DexPort    int    `validate:"min=1,max=65535"`
	GristPort  int    `validate:"min=1,max=65535"`
	TFAPort    int    `validate:"min=1,max=65535"`
	WhoamiPort int    `validate:"min=1,max=65535"`

	SessionSecret    string `validate:"required"`
	OIDCClientID     string `validate:"required"`
	OIDCClientSecret string `validate:"required"`
	OIDCIssuerURL    string `validate:"required,url"`
	SidecarSecret    string `validate:"required"`
	LogoutRedirect   string `validate:"required,url"`

	// HTTPSMode is empty for plain http URLs.
	HTTPSMode TLSMode `validate:"omitempty,oneof=auto manual external"`
	TLS       string
	UseHTTPS  bool

	env Env
}

// Environ returns the full derived environment as sorted KEY=VALUE pairs.
// Every call returns a fresh slice.
func (s *Settings) Environ() []string {
	return s.env.Environ()
}

// Lookup returns a variable of the derived environment.
func (s *Settings) Lookup(name string) (string, bool) {
	return s.env.Lookup(name)
}

// Redacted returns the derived environment with secret values masked.
func (s *Settings) Redacted() map[string]string {
	out := make(map[string]string, len(s.env))
	for k, v := range s.env {
		if secretVars[k] || strings.HasPrefix(k, "PASSWORD") {
			v = redacted
		}
		out[k] = v
	}
	return out
}

// Ports returns the derived ports keyed by variable name.
func (s *Settings) Ports() map[string]int {
	return map[string]int{
		VarExtPort:    s.ExtPort,
		VarDexPort:    s.DexPort,
		VarGristPort:  s.GristPort,
		VarTFAPort:    s.TFAPort,
		VarWhoamiPort: s.WhoamiPort,
	}
}

// SortedPortNames returns the keys of Ports in a stable order.
func SortedPortNames(ports map[string]int) []string {
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// secretFields are filled in by setSecrets once the rest has been validated.
var secretFields = []string{"SessionSecret", "OIDCClientID", "OIDCClientSecret", "SidecarSecret"}

// newSettings builds and validates everything except the secrets.
func newSettings(env Env) (*Settings, error) {
	s := &Settings{
		URL:            env.Get(VarURL),
		Email:          env.Get(VarEmail),
		Team:           env.Get(VarTeam),
		AppHost:        env.Get(VarAppHost),
		OIDCIssuerURL:  env.Get(VarOIDCIssuerURL),
		LogoutRedirect: env.Get(VarLogoutRedirect),
		TLS:            env.Get(VarTLS),
		UseHTTPS:       env.Get(VarUseHTTPS) == "true",
	}
	if s.UseHTTPS {
		s.HTTPSMode = TLSMode(env.Get(VarHTTPS))
	}

	ports := []struct {
		name string
		dst  *int
	}{
		{VarExtPort, &s.ExtPort},
		{VarDexPort, &s.DexPort},
		{VarGristPort, &s.GristPort},
		{VarTFAPort, &s.TFAPort},
		{VarWhoamiPort, &s.WhoamiPort},
	}
	for _, p := range ports {
		n, err := strconv.Atoi(env.Get(p.name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a port number: %q", ErrInvalidSettings, p.name, env.Get(p.name))
		}
		*p.dst = n
	}

	if err := validate.StructExcept(s, secretFields...); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSettings, formatValidationErrors(err))
	}
	return s, nil
}

// setSecrets copies the secrets from env and freezes env into s.
func (s *Settings) setSecrets(env Env) error {
	s.SessionSecret = env.Get(VarSessionSecret)
	s.OIDCClientID = env.Get(VarOIDCClientID)
	s.OIDCClientSecret = env.Get(VarOIDCClientSecret)
	s.SidecarSecret = env.Get(VarSidecarSecret)

	if err := validate.StructPartial(s, secretFields...); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, formatValidationErrors(err))
	}
	s.env = env.Clone()
	return nil
}

var validate = validator.New()

func formatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s is out of range: %v", fe.Field(), fe.Value()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s is not a valid URL: %v", fe.Field(), fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation: %v", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return strings.Join(msgs, "; ")
}
