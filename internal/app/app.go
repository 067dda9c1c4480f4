// Package app initializes and holds long-lived application services,
// acting as a dependency injection container for the CLI commands.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobharvest/avharvest/internal/config"
	"github.com/jobharvest/avharvest/internal/fetcher"
	"github.com/jobharvest/avharvest/internal/harvest"
	"github.com/jobharvest/avharvest/internal/logging"
	"github.com/jobharvest/avharvest/internal/metrics"
	"github.com/jobharvest/avharvest/internal/store/memory"
	"github.com/jobharvest/avharvest/internal/store/postgres"
)

// App holds the shared, long-lived services: logger, store, and the two
// fetchers (discovery probes and scraping use different user agents and
// timeouts). It is initialized once at startup and passed to commands.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	store  harvest.Store
	closer func()
}

// New builds an App from configuration, failing fast if any critical
// service cannot be initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	metrics.Init()

	a := &App{cfg: cfg, logger: logger}

	switch cfg.Store.Kind {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
		a.store = pg
		a.closer = pg.Close
		logger.Info("using postgres store")
	case "memory":
		a.store = memory.New()
		logger.Info("using in-memory store, data will not survive the process")
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}

	return a, nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Store returns the persistence backend.
func (a *App) Store() harvest.Store { return a.store }

// DiscoveryFetcher builds a fetcher tuned for tenant probes.
func (a *App) DiscoveryFetcher() harvest.Fetcher {
	return fetcher.New(fetcher.Config{
		UserAgent: a.cfg.Discovery.UserAgent,
		Timeout:   a.cfg.DiscoveryTimeout(),
	})
}

// ScraperFetcher builds a fetcher tuned for listing and detail pages.
func (a *App) ScraperFetcher() harvest.Fetcher {
	return fetcher.New(fetcher.Config{
		UserAgent: a.cfg.Scraper.UserAgent,
		Timeout:   a.cfg.DetailTimeout(),
	})
}

// Close releases held resources and flushes the logger.
func (a *App) Close() {
	if a.closer != nil {
		a.closer()
	}
	_ = a.logger.Sync()
}
