package settings

import (
	"context"
	"fmt"

	"omnibus/internal/secrets"
	"omnibus/pkg/logging"
)

var defaults = []struct{ name, value string }{
	{"GRIST_SANDBOX_FLAVOR", "gvisor"},
	{"GRIST_HIDE_UI_ELEMENTS", "helpCenter,billing,templates,multiSite,multiAccounts"},
	{"GRIST_ORG_IN_PATH", "false"},
	{"GRIST_FORWARD_AUTH_HEADER", "X-Forwarded-User"},
	{"GRIST_FORCE_LOGIN", "true"},
}

var mandatory = []struct {
	name, synonym, hint string
}{
	{VarURL, VarAppHomeURL, "Please define URL so Grist knows how users will access it."},
	{VarEmail, VarDefaultEmail, "Please provide an EMAIL, needed for certificates and initial login."},
	{VarTeam, VarSingleOrg, "Please set TEAM, omnibus version of Grist expects it."},
}

var brittle = []struct{ name, value string }{
	{"GRIST_FORWARD_AUTH_LOGOUT_PATH", "_oauth/logout"},
	{"DEFAULT_PROVIDER", "oidc"},
}

// inventions maps variables to the secret store key their value is kept under.
var inventions = []struct{ name, key string }{
	{VarSessionSecret, "GRIST_SESSION_SECRET"},
	{VarOIDCClientID, "PROVIDERS_OIDC_CLIENT_ID"},
	{VarOIDCClientSecret, "PROVIDERS_OIDC_CLIENT_SECRET"},
	{VarSidecarSecret, "TFA_SECRET"},
}

// Derive computes the full settings from env. env itself is not modified.
// Configuration errors are returned before any secret is generated; secrets are
// obtained from store only for variables env leaves empty.
func Derive(ctx context.Context, env Env, store secrets.Store) (*Settings, error) {
	work := env.Clone()

	for _, d := range defaults {
		work.SetDefault(d.name, d.value)
	}

	for _, m := range mandatory {
		if err := work.SetSynonym(m.name, m.synonym); err != nil {
			return nil, err
		}
		if work.Get(m.name) == "" {
			return nil, fmt.Errorf("%w %s: %s", ErrMissingSetting, m.name, m.hint)
		}
	}

	for _, b := range brittle {
		if err := work.SetBrittle(b.name, b.value); err != nil {
			return nil, err
		}
	}

	scheme, err := deriveNetwork(work)
	if err != nil {
		return nil, err
	}

	home := work.Get(VarAppHomeURL)
	work.Set(VarOIDCIssuerURL, home+"/dex")
	work.Set(VarLogoutRedirect, home+"/signed-out")

	if err := deriveTLS(work, scheme); err != nil {
		return nil, err
	}

	// Everything but the secrets is validated before the store is touched.
	s, err := newSettings(work)
	if err != nil {
		return nil, err
	}

	for _, inv := range inventions {
		if work.Get(inv.name) != "" {
			continue
		}
		value, err := store.Obtain(ctx, inv.key)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain %s: %w", inv.name, err)
		}
		work.Set(inv.name, value)
	}

	if err := s.setSecrets(work); err != nil {
		return nil, err
	}
	logging.Debug("Settings", "Derived settings for %s (host %s, dex port %d, https mode %q)", s.URL, s.AppHost, s.DexPort, s.HTTPSMode)
	return s, nil
}
