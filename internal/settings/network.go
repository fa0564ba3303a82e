package settings

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	defaultHost = "localhost"
	// defaultExtPort stands in when URL names no port.
	defaultExtPort = "9999"
	dexPort        = "9999"
)

var schemeDefaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// parseURL returns the scheme, host and external port of raw. A port equal to the
// scheme's default is dropped, as URL normalisation would.
func parseURL(raw string) (scheme, host, port string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", "", fmt.Errorf("%w %q: %v", ErrInvalidURL, raw, err)
	}
	defaultPort, ok := schemeDefaultPorts[u.Scheme]
	if !ok {
		return "", "", "", fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidURL, raw)
	}

	host = u.Hostname()
	if host == "" {
		host = defaultHost
	}
	port = u.Port()
	if port == defaultPort {
		port = ""
	}
	return u.Scheme, host, port, nil
}

// deriveNetwork sets APP_HOST, EXT_PORT, DEX_PORT and the internal service ports.
// It returns the URL scheme.
func deriveNetwork(env Env) (string, error) {
	scheme, host, port, err := parseURL(env.Get(VarURL))
	if err != nil {
		return "", err
	}
	if port == "" {
		port = defaultExtPort
	}
	env.Set(VarAppHost, host)
	env.Set(VarExtPort, port)

	// The sidecar talks to the identity provider through URL from inside the
	// container. For localhost that only works if the provider listens on the
	// external port itself, which the proxy already holds for 80 and 443.
	dex := dexPort
	if host == defaultHost && port != "80" && port != "443" {
		dex = port
	}
	env.Set(VarDexPort, dex)

	grist, tfa, whoami := allocatePorts(dex)
	env.Set(VarGristPort, strconv.Itoa(grist))
	env.Set(VarTFAPort, strconv.Itoa(tfa))
	env.Set(VarWhoamiPort, strconv.Itoa(whoami))
	return scheme, nil
}

// allocatePorts keeps the internal ports out of the way of the Dex port by picking
// a leading digit that differs from it.
func allocatePorts(dexPort string) (grist, tfa, whoami int) {
	alt := 1
	if len(dexPort) > 0 && dexPort[0] == '1' {
		alt = 2
	}
	base := alt*10000 + 7100
	return base, base + 1, base + 2
}
