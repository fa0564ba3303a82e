// Package readiness blocks until an HTTP endpoint answers successfully.
package readiness

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"omnibus/internal/config"
	"omnibus/pkg/logging"
)

// Gate polls a probe URL with growing delays until it returns a 2xx status.
type Gate struct {
	client  *http.Client
	backoff wait.Backoff
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewGate creates a gate from the readiness configuration. Certificates are not
// verified: the gate only asks whether the endpoint is up.
func NewGate(cfg config.ReadinessConfig) *Gate {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	return &Gate{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		backoff: wait.Backoff{
			Duration: cfg.InitialDelay,
			Factor:   cfg.Factor,
			Cap:      cfg.MaxDelay,
			Steps:    math.MaxInt32,
		},
		sleep: sleepContext,
	}
}

// WaitUntilReady returns nil once probeURL answers with a 2xx status. There is no
// attempt limit; it returns early only with ctx.Err() when ctx is done.
func (g *Gate) WaitUntilReady(ctx context.Context, probeURL string) error {
	defer g.client.CloseIdleConnections()

	backoff := g.backoff
	for attempt := 1; ; attempt++ {
		logging.Debug("Readiness", "Checking %s (attempt %d)", probeURL, attempt)
		err := g.probe(ctx, probeURL)
		if err == nil {
			logging.Info("Readiness", "Endpoint %s is ready", probeURL)
			return nil
		}
		logging.Debug("Readiness", "Not ready: %v", err)

		if err := g.sleep(ctx, backoff.Step()); err != nil {
			return err
		}
	}
}

func (g *Gate) probe(ctx context.Context, probeURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	logging.Debug("Readiness", "Got status %d", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
