package cmd

import (
	"github.com/spf13/cobra"
)

// newScrapeCmd creates the 'scrape' subcommand, which walks the paginated
// listings of stored tenants and persists the extracted jobs.
func newScrapeCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrapes job listings for stored tenants",
		Long: `Walks each stored tenant's paginated job listings from its saved
cursor, fetches detail pages concurrently, and persists the extracted
postings. Tenants already marked completed are skipped; an interrupted
tenant resumes from its last committed offset on the next run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			s := newScraper(a, a.Logger())
			if tenant != "" {
				return s.ScrapeTenant(cmd.Context(), tenant)
			}
			return s.ScrapeAll(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "scrape a single tenant instead of all stored tenants")
	return cmd
}
