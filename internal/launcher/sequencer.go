package launcher

import (
	"context"
	"fmt"
	"slices"
	"time"

	"omnibus/internal/settings"
	"omnibus/pkg/logging"
)

// Result describes a completed start.
type Result struct {
	Part    string
	Handles []Handle
}

// Sequencer starts the services selected by a part in order. Services with a probe
// URL are started only after it is ready.
type Sequencer struct {
	settings    *settings.Settings
	services    []Service
	starter     Starter
	gate        Waiter
	settleDelay time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewSequencer creates a sequencer over services.
func NewSequencer(s *settings.Settings, services []Service, starter Starter, gate Waiter, settleDelay time.Duration) *Sequencer {
	return &Sequencer{
		settings:    s,
		services:    services,
		starter:     starter,
		gate:        gate,
		settleDelay: settleDelay,
		sleep:       sleepContext,
	}
}

// Start launches every service enabled by part. It does not supervise them: the
// returned handles are only good for signalling. An unknown part starts nothing.
// On error, handles of services already started are still returned.
func (q *Sequencer) Start(ctx context.Context, part string) (*Result, error) {
	result := &Result{Part: part}
	if !slices.Contains(Parts, part) {
		logging.Warn("Launcher", "Unknown part %q, no service selected", part)
	}

	for _, svc := range q.services {
		if !svc.Enabled(part) {
			continue
		}

		if svc.ProbeURL != nil {
			probe := svc.ProbeURL(q.settings)
			logging.Info("Launcher", "Waiting for %s before starting %s", probe, svc.Name)
			if err := q.gate.WaitUntilReady(ctx, probe); err != nil {
				return result, fmt.Errorf("waiting for %s: %w", svc.Name, err)
			}
		}
		if svc.PreStart != nil {
			if err := svc.PreStart(q.settings); err != nil {
				return result, fmt.Errorf("preparing %s: %w", svc.Name, err)
			}
		}

		spec := svc.Spec(q.settings)
		logging.Info("Launcher", "Starting %s: %s %v", svc.Name, spec.Command, spec.Args)
		h, err := q.starter.Start(spec)
		if err != nil {
			return result, err
		}
		logging.Debug("Launcher", "Started %s (PID: %d)", svc.Name, h.PID())
		result.Handles = append(result.Handles, h)
	}

	if err := q.sleep(ctx, q.settleDelay); err != nil {
		return result, err
	}
	logging.Info("Launcher", "I think everything has started up now")
	if part == PartAll {
		ports := "80"
		if q.settings.HTTPSMode != "" {
			ports = "80/443"
		}
		logging.Info("Launcher", "Listening internally on %s, externally at %s", ports, q.settings.URL)
	}
	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
