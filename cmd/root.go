package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "omnibus",
	Short: "Start Grist with its proxy, identity provider and auth sidecar",
	Long: `omnibus is the entrypoint of the Grist omnibus container. It derives the
settings of every service from a handful of environment variables (URL, EMAIL,
TEAM, HTTPS), generates the secrets nobody should have to choose, and launches
Grist, Traefik, whoami, Dex and traefik-forward-auth in the right order.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. missing settings)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "omnibus version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
