package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jobharvest/avharvest/internal/logging"
)

// newRunCmd creates the 'run' subcommand: one full harvest cycle.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Runs one full harvest cycle: discover, scrape, export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := logging.ForRun(a.Logger(), uuid.NewString())
			return runHarvest(cmd.Context(), a, logger)
		},
	}
}
