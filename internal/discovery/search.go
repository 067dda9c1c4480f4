package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobharvest/avharvest/internal/fetcher"
	"github.com/jobharvest/avharvest/internal/harvest"
)

// SearchConfig points the auxiliary seed source at a serper-style search
// API. An empty APIKey disables the source.
type SearchConfig struct {
	Endpoint string
	APIKey   string
	Pages    int
	PageSize int
	Pause    time.Duration
}

func (c *SearchConfig) applyDefaults() {
	if c.Pages <= 0 {
		c.Pages = 2
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.Pause <= 0 {
		c.Pause = 100 * time.Millisecond
	}
}

// OrganicResult is one search hit.
type OrganicResult struct {
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Organic []OrganicResult `json:"organic"`
}

// SearchClient discovers candidate tenant names through a web search API.
type SearchClient struct {
	cfg      SearchConfig
	platform harvest.Platform
	client   *fetcher.JSONClient
	logger   *zap.Logger
}

// NewSearchClient builds a SearchClient around a shared JSON client.
func NewSearchClient(
	cfg SearchConfig,
	platform harvest.Platform,
	client *fetcher.JSONClient,
	logger *zap.Logger,
) *SearchClient {
	cfg.applyDefaults()
	if platform.RootDomain == "" {
		platform = harvest.DefaultPlatform()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchClient{cfg: cfg, platform: platform, client: client, logger: logger}
}

// Enabled reports whether an API key is configured.
func (c *SearchClient) Enabled() bool {
	return c.cfg.APIKey != ""
}

// Search runs one query page and returns the organic results.
func (c *SearchClient) Search(ctx context.Context, query string, page int) ([]OrganicResult, error) {
	payload := map[string]any{
		"q":     query,
		"num":   c.cfg.PageSize,
		"start": page * c.cfg.PageSize,
	}
	headers := map[string]string{"X-API-KEY": c.cfg.APIKey}

	body, status, err := c.client.PostJSON(ctx, c.cfg.Endpoint, payload, headers)
	if err != nil {
		return nil, fmt.Errorf("search query %q page %d: %w", query, page, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("search query %q page %d: status %d", query, page, status)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Organic, nil
}

// Discover runs every query across the configured number of pages and
// harvests tenant names from the result links and snippets. Failures on one
// page are logged and skipped; discovery is best-effort.
func (c *SearchClient) Discover(ctx context.Context, queries []string) []string {
	var names []string
	seen := make(map[string]struct{})

	for _, query := range queries {
		for page := 0; page < c.cfg.Pages; page++ {
			results, err := c.Search(ctx, query, page)
			if err != nil {
				c.logger.Warn("search page failed",
					zap.String("query", query),
					zap.Int("page", page),
					zap.Error(err))
				continue
			}
			for _, result := range results {
				for _, name := range c.platform.ExtractTenantNames(result.Link + " " + result.Snippet) {
					if _, ok := seen[name]; ok {
						continue
					}
					seen[name] = struct{}{}
					names = append(names, name)
				}
			}

			// polite pause between query pages
			select {
			case <-ctx.Done():
				return names
			case <-time.After(c.cfg.Pause):
			}
		}
	}
	return names
}
