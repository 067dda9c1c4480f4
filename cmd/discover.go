package cmd

import (
	"github.com/spf13/cobra"
)

// newDiscoverCmd creates the 'discover' subcommand, which probes the tenant
// namespace and persists confirmed tenants without scraping them.
func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Discovers tenant career portals and persists them",
		Long: `Probes candidate tenant subdomains from the configured seeds (and,
when a search API key is configured, from web search results), follows
cross-tenant links breadth-first within the configured depth and size
bounds, and persists every confirmed tenant.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return runDiscovery(cmd.Context(), a, a.Logger())
		},
	}
}
