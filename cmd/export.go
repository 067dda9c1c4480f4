package cmd

import (
	"github.com/spf13/cobra"
)

// newExportCmd creates the 'export' subcommand, which dumps stored jobs
// to a file without crawling anything.
func newExportCmd() *cobra.Command {
	var (
		tenant string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exports stored jobs to a JSON or CSV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), a, tenant, format, a.Logger())
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "export a single tenant's jobs")
	cmd.Flags().StringVar(&format, "format", "", "output format: json or csv (default from config)")
	return cmd
}
