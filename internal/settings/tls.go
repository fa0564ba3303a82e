package settings

import "fmt"

// TLSMode selects how the reverse proxy obtains certificates for https URLs.
type TLSMode string

const (
	// TLSModeAuto obtains certificates from Let's Encrypt.
	TLSModeAuto TLSMode = "auto"
	// TLSModeManual uses certificates provided by the operator.
	TLSModeManual TLSMode = "manual"
	// TLSModeExternal leaves TLS termination to something in front of the container.
	TLSModeExternal TLSMode = "external"
)

// routerTLS is the value the proxy's router configuration expects in TLS.
var routerTLS = map[TLSMode]string{
	TLSModeAuto:     "{ certResolver: letsencrypt }",
	TLSModeManual:   "true",
	TLSModeExternal: "false",
}

// deriveTLS sets TLS and USE_HTTPS for https URLs. Other schemes get no TLS settings.
func deriveTLS(env Env, scheme string) error {
	if scheme != "https" {
		return nil
	}
	mode := TLSMode(env.Get(VarHTTPS))
	tls, ok := routerTLS[mode]
	if !ok {
		return fmt.Errorf("%w %q: HTTPS environment variable must be set to: auto, external, or manual", ErrUnsupportedTLSMode, mode)
	}
	env.Set(VarTLS, tls)
	env.Set(VarUseHTTPS, "true")
	return nil
}
