// Package cmd defines and implements the CLI commands for the avharvest
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobharvest/avharvest/internal/app"
	"github.com/jobharvest/avharvest/internal/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It is a variable so tests can swap
// in a factory that builds against the in-memory store.
var newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avharvest",
		Short: "Harvests job postings from a multi-tenant careers platform.",
		Long: `avharvest discovers tenant career portals on a hosted recruiting
platform, walks each tenant's paginated job listings with a resumable
cursor, and persists the extracted postings for export and serving.`,

		// Runs after flags are parsed but before any subcommand's RunE:
		// load config, build services, inject them into the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default reads AVHARVEST_* environment variables)")

	cmd.AddCommand(
		newDiscoverCmd(),
		newScrapeCmd(),
		newRunCmd(),
		newExportCmd(),
		newServeCmd(),
	)
	return cmd
}

// resolveApp pulls the injected App back out of the command context.
func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return a, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
