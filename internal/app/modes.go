package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"omnibus/internal/launcher"
	"omnibus/internal/reporting"
	"omnibus/pkg/logging"
)

// Run starts the selected services, prints the summary and then waits for SIGINT or
// SIGTERM, which is passed on to every launched process group as SIGTERM.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	omnibusCfg := a.config.OmnibusConfig
	sequencer := launcher.NewSequencer(
		a.settings,
		launcher.DefaultServices(*omnibusCfg),
		a.services.Starter,
		a.services.Gate,
		omnibusCfg.SettleDelay,
	)

	result, err := sequencer.Start(ctx, a.config.Part)
	if err != nil {
		shutdown(result)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			logging.Info("CLI", "Interrupted during startup")
			return nil
		}
		logging.Error("CLI", err, "Failed to start services")
		return err
	}

	if err := reporting.NewSummary(a.runID, a.settings, result).Render(os.Stdout); err != nil {
		logging.Warn("CLI", "Failed to print summary: %v", err)
	}

	<-ctx.Done()
	logging.Info("CLI", "Shutting down services")
	shutdown(result)
	return nil
}

func shutdown(result *launcher.Result) {
	if result == nil {
		return
	}
	for _, h := range result.Handles {
		if err := h.Signal(syscall.SIGTERM); err != nil {
			logging.Warn("CLI", "%v", err)
			continue
		}
		logging.Debug("CLI", "Sent SIGTERM to %s (PID: %d)", h.Name(), h.PID())
	}
}
