package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"omnibus/internal/app"
	"omnibus/internal/launcher"
)

type runOptions struct {
	part       string
	debug      bool
	configPath string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Derive settings and start the services",
		Long: `Derives the settings from the environment, then starts the selected services:

  grist     the Grist server
  traefik   the reverse proxy
  who       the whoami test service
  dex       the identity provider (its configuration is written first)
  tfa       the forward-auth sidecar, once the identity provider answers
  all       everything above, in that order (default)

omnibus then stays in the foreground and passes SIGINT/SIGTERM on to the services.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.part, "part", "p", launcher.PartAll, "Services to start: "+strings.Join(launcher.Parts, ", "))
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Load orchestrator configuration from this file only")
	return cmd
}

func runRun(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	application, err := app.NewApplication(ctx, app.NewConfig(opts.part, opts.debug, opts.configPath))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run(ctx)
}
