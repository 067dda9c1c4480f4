package discovery

import (
	"bufio"
	"fmt"
	"os"

	"github.com/jobharvest/avharvest/internal/harvest"
)

// LoadSeeds reads a seed file with one URL-ish token per line and returns
// the canonical tenant URLs found, deduplicated in file order. Blank lines
// and lines without a tenant link are skipped, not errors; an unreadable
// file is a configuration error.
func LoadSeeds(path string, platform harvest.Platform) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var tenants []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		tenant := platform.ExtractTenantURL(scanner.Text())
		if tenant == "" {
			continue
		}
		if _, ok := seen[tenant]; ok {
			continue
		}
		seen[tenant] = struct{}{}
		tenants = append(tenants, tenant)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return tenants, nil
}
