package launcher

import (
	"sort"
	"strconv"
	"strings"

	"omnibus/internal/accounts"
	"omnibus/internal/config"
	"omnibus/internal/dex"
	"omnibus/internal/settings"
)

// Service describes one process of the stack.
type Service struct {
	Name string
	// Part selects the service on its own; PartAll selects every service.
	Part string
	// Command is the executable followed by fixed arguments.
	Command []string
	// Args returns arguments derived from settings, appended to Command.
	Args func(s *settings.Settings) []string
	// Overrides returns variables replacing those of the derived environment.
	Overrides func(s *settings.Settings) map[string]string
	// ProbeURL returns an endpoint that must be ready before the service starts.
	ProbeURL func(s *settings.Settings) string
	// PreStart runs before the process is spawned.
	PreStart func(s *settings.Settings) error
}

// Enabled reports whether part selects the service.
func (svc Service) Enabled(part string) bool {
	return part == PartAll || part == svc.Part
}

// Spec builds the process spec for the service.
func (svc Service) Spec(s *settings.Settings) ProcessSpec {
	args := append([]string{}, svc.Command[1:]...)
	if svc.Args != nil {
		args = append(args, svc.Args(s)...)
	}
	var overrides map[string]string
	if svc.Overrides != nil {
		overrides = svc.Overrides(s)
	}
	return ProcessSpec{
		Name:    svc.Name,
		Command: svc.Command[0],
		Args:    args,
		Env:     mergeEnv(s.Environ(), overrides),
	}
}

// DefaultServices returns the stack in launch order: grist, traefik, whoami, dex
// and the forward-auth sidecar.
func DefaultServices(cfg config.OmnibusConfig) []Service {
	paths := cfg.Paths
	return []Service{
		{
			Name:    "grist",
			Part:    PartGrist,
			Command: cfg.Services.Grist,
			Overrides: func(s *settings.Settings) map[string]string {
				return map[string]string{"PORT": strconv.Itoa(s.GristPort)}
			},
		},
		{
			Name:    "traefik",
			Part:    PartTraefik,
			Command: cfg.Services.Traefik,
			Args: func(s *settings.Settings) []string {
				return traefikFlags(paths, s)
			},
		},
		{
			Name:    "whoami",
			Part:    PartWho,
			Command: cfg.Services.Whoami,
			Overrides: func(s *settings.Settings) map[string]string {
				return map[string]string{"WHOAMI_PORT_NUMBER": strconv.Itoa(s.WhoamiPort)}
			},
		},
		{
			Name:    "dex",
			Part:    PartDex,
			Command: cfg.Services.Dex,
			Args: func(*settings.Settings) []string {
				return []string{paths.DexFullConfig}
			},
			PreStart: func(s *settings.Settings) error {
				_, err := dex.WriteConfig(paths, s, accounts.BcryptHasher{})
				return err
			},
		},
		{
			Name:    "traefik-forward-auth",
			Part:    PartTFA,
			Command: cfg.Services.TFA,
			Args: func(s *settings.Settings) []string {
				return []string{"--port=" + strconv.Itoa(s.TFAPort)}
			},
			ProbeURL: func(s *settings.Settings) string {
				return s.OIDCIssuerURL + "/.well-known/openid-configuration"
			},
		},
	}
}

func traefikFlags(paths config.PathsConfig, s *settings.Settings) []string {
	flags := []string{
		"--providers.file.filename=" + paths.TraefikConfig,
		"--entryPoints.web.address=:80",
	}
	if s.HTTPSMode == settings.TLSModeAuto {
		flags = append(flags,
			"--certificatesResolvers.letsencrypt.acme.email="+s.Email,
			"--certificatesResolvers.letsencrypt.acme.storage="+paths.AcmeStorage,
			"--certificatesResolvers.letsencrypt.acme.tlschallenge=true",
		)
	}
	if s.HTTPSMode != "" {
		flags = append(flags, "--entrypoints.websecure.address=:443")
	}
	return flags
}

// mergeEnv replaces entries of environ by overrides and adds the rest, sorted.
func mergeEnv(environ []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return environ
	}
	out := make([]string, 0, len(environ)+len(overrides))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[name]; ok {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
