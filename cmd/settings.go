package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"omnibus/internal/app"
	"omnibus/internal/launcher"
)

func newSettingsCmd() *cobra.Command {
	var debug bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the derived environment without starting anything",
		Long: `Derives the settings exactly as 'run' would and prints the resulting environment
as YAML. Secret values are redacted. Secrets that do not exist yet are generated
and persisted, as they would be on a real start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			application, err := app.NewApplication(ctx, app.NewConfig(launcher.PartAll, debug, configPath))
			if err != nil {
				return fmt.Errorf("failed to derive settings: %w", err)
			}

			out, err := yaml.Marshal(application.Settings().Redacted())
			if err != nil {
				return fmt.Errorf("failed to encode settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&configPath, "config", "", "Load orchestrator configuration from this file only")
	return cmd
}
