package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jobharvest/avharvest/internal/app"
	"github.com/jobharvest/avharvest/internal/discovery"
	"github.com/jobharvest/avharvest/internal/export"
	"github.com/jobharvest/avharvest/internal/fetcher"
	"github.com/jobharvest/avharvest/internal/harvest"
	"github.com/jobharvest/avharvest/internal/scraper"
)

func platformFromConfig(a *app.App) harvest.Platform {
	return harvest.Platform{
		RootDomain:  a.Config().Platform.RootDomain,
		CareersPath: a.Config().Platform.CareersPath,
	}
}

// collectSeeds gathers candidate tenant names from the seeds file, the
// configured seed list, and the optional web-search source.
func collectSeeds(ctx context.Context, a *app.App, logger *zap.Logger) ([]string, error) {
	cfg := a.Config()
	platform := platformFromConfig(a)

	var names []string
	seen := make(map[string]struct{})
	add := func(batch []string) {
		for _, name := range batch {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	if cfg.Discovery.SeedsFile != "" {
		fromFile, err := discovery.LoadSeeds(cfg.Discovery.SeedsFile, platform)
		if err != nil {
			return nil, fmt.Errorf("load seeds file: %w", err)
		}
		add(fromFile)
	}
	add(cfg.Discovery.SeedCompanies)

	if cfg.Search.APIKey != "" && len(cfg.Search.Queries) > 0 {
		jsonClient, err := fetcher.NewJSONClient(cfg.Discovery.UserAgent, a.Config().DiscoveryTimeout())
		if err != nil {
			return nil, fmt.Errorf("build search client: %w", err)
		}
		search := discovery.NewSearchClient(discovery.SearchConfig{
			Endpoint: cfg.Search.Endpoint,
			APIKey:   cfg.Search.APIKey,
			Pages:    cfg.Search.Pages,
			PageSize: cfg.Search.PageSize,
		}, platform, jsonClient, logger)
		add(search.Discover(ctx, cfg.Search.Queries))
	}

	logger.Info("seed collection complete", zap.Int("candidates", len(names)))
	return names, nil
}

// runDiscovery probes the seed graph and persists every confirmed tenant.
func runDiscovery(ctx context.Context, a *app.App, logger *zap.Logger) error {
	cfg := a.Config()
	seeds, err := collectSeeds(ctx, a, logger)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		logger.Warn("no discovery seeds configured, nothing to probe")
		return nil
	}

	crawler := discovery.NewGraphCrawler(discovery.GraphConfig{
		Platform:     platformFromConfig(a),
		Concurrency:  cfg.Discovery.Concurrency,
		Timeout:      cfg.DiscoveryTimeout(),
		MaxDepth:     cfg.Discovery.MaxDepth,
		MaxTenants:   cfg.Discovery.MaxTenants,
		MinBodyBytes: cfg.Discovery.MinBodyBytes,
	}, a.DiscoveryFetcher(), logger)

	domains := crawler.Crawl(ctx, seeds)
	now := time.Now().UTC()
	for _, domain := range domains {
		if err := a.Store().UpsertTenant(ctx, domain, now); err != nil {
			return fmt.Errorf("persist tenant %s: %w", domain, err)
		}
	}
	logger.Info("discovery complete", zap.Int("tenants", len(domains)))
	return nil
}

func newScraper(a *app.App, logger *zap.Logger) *scraper.Scraper {
	cfg := a.Config()
	return scraper.New(scraper.Config{
		Platform:       platformFromConfig(a),
		PageSize:       cfg.Scraper.PageSize,
		ListingTimeout: cfg.ListingTimeout(),
		DetailTimeout:  cfg.DetailTimeout(),
	}, a.Store(), a.ScraperFetcher(), harvest.SystemClock{}, logger)
}

// runHarvest executes the full pipeline: discovery, scraping, export.
func runHarvest(ctx context.Context, a *app.App, logger *zap.Logger) error {
	if err := runDiscovery(ctx, a, logger); err != nil {
		return err
	}
	if err := newScraper(a, logger).ScrapeAll(ctx); err != nil {
		return err
	}
	return runExport(ctx, a, "", "", logger)
}

// runExport dumps jobs to the configured export directory. Empty tenant
// exports everything; empty format falls back to the configured one.
func runExport(ctx context.Context, a *app.App, tenant, format string, logger *zap.Logger) error {
	cfg := a.Config()
	if format == "" {
		format = cfg.Export.Format
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	name := "jobs." + string(f)
	if tenant != "" {
		name = fmt.Sprintf("jobs-%s.%s", sanitizeFileName(tenant), f)
	}
	path := filepath.Join(cfg.Export.Dir, name)
	n, err := export.Write(ctx, a.Store(), tenant, path, f)
	if err != nil {
		return err
	}
	logger.Info("export written",
		zap.String("path", path),
		zap.Int("jobs", n))
	return nil
}

func sanitizeFileName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
