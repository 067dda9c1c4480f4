// Package scraper implements the resumable per-tenant pagination crawl.
package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobharvest/avharvest/internal/extract"
	"github.com/jobharvest/avharvest/internal/fetcher"
	"github.com/jobharvest/avharvest/internal/harvest"
	"github.com/jobharvest/avharvest/internal/metrics"
)

// Config controls the pagination loop.
type Config struct {
	Platform       harvest.Platform
	PageSize       int
	ListingTimeout time.Duration
	DetailTimeout  time.Duration
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if c.ListingTimeout <= 0 {
		c.ListingTimeout = 30 * time.Second
	}
	if c.DetailTimeout <= 0 {
		c.DetailTimeout = 30 * time.Second
	}
	if c.Platform.RootDomain == "" {
		c.Platform = harvest.DefaultPlatform()
	}
}

// Scraper walks one tenant's job listings from the persisted cursor, fans
// out to detail pages, and commits one listing page per transaction.
type Scraper struct {
	cfg     Config
	store   harvest.Store
	fetcher harvest.Fetcher
	clock   harvest.Clock
	logger  *zap.Logger
}

// New constructs a Scraper.
func New(
	cfg Config,
	store harvest.Store,
	f harvest.Fetcher,
	clock harvest.Clock,
	logger *zap.Logger,
) *Scraper {
	cfg.applyDefaults()
	if clock == nil {
		clock = harvest.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{cfg: cfg, store: store, fetcher: f, clock: clock, logger: logger}
}

// ScrapeAll processes every stored tenant sequentially in listing order.
// A failed tenant is logged and skipped; its saved cursor makes the next
// invocation pick it up where this one stopped.
func (s *Scraper) ScrapeAll(ctx context.Context) error {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}
	for _, tenant := range tenants {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ScrapeTenant(ctx, tenant.Domain); err != nil {
			s.logger.Error("tenant scrape failed",
				zap.String("tenant", tenant.Domain),
				zap.Error(err))
		}
	}
	return nil
}

// ScrapeTenant runs the pagination loop for one tenant. Re-running a
// completed tenant returns immediately. A listing fetch failure stops the
// loop without marking completion, leaving the cursor at the last committed
// offset; only store failures are returned as errors.
func (s *Scraper) ScrapeTenant(ctx context.Context, tenant string) error {
	state, err := s.store.GetCrawlState(ctx, tenant)
	if err != nil {
		return fmt.Errorf("read crawl state: %w", err)
	}
	if state.Completed {
		s.logger.Info("skipping completed tenant", zap.String("tenant", tenant))
		return nil
	}

	offset := state.LastOffset
	s.logger.Info("starting tenant scrape",
		zap.String("tenant", tenant),
		zap.Int("offset", offset))

	for {
		listingURL := s.cfg.Platform.ListingURL(tenant, s.cfg.PageSize, offset)
		resp, err := s.fetcher.Fetch(ctx, harvest.FetchRequest{
			URL:     listingURL,
			Timeout: s.cfg.ListingTimeout,
		})
		if err != nil {
			// Transient or terminal, we cannot tell; the saved cursor makes
			// a retry on the next run safe either way.
			metrics.ObserveListingPage(metrics.OutcomeFailed)
			s.logger.Warn("listing fetch failed, stopping tenant",
				zap.String("tenant", tenant),
				zap.Int("offset", offset),
				zap.Error(err))
			return nil
		}

		stubs, err := extract.Listings(resp.Body)
		if err != nil {
			metrics.ObserveListingPage(metrics.OutcomeFailed)
			s.logger.Warn("listing parse failed, stopping tenant",
				zap.String("tenant", tenant),
				zap.Int("offset", offset),
				zap.Error(err))
			return nil
		}
		if len(stubs) == 0 {
			metrics.ObserveListingPage(metrics.OutcomeEmpty)
			break
		}
		metrics.ObserveListingPage(metrics.OutcomeOK)

		batch := s.fetchDetails(ctx, tenant, stubs)
		if len(batch) > 0 {
			if err := s.store.InsertJobBatch(ctx, batch); err != nil {
				return fmt.Errorf("insert job batch at offset %d: %w", offset, err)
			}
			metrics.AddJobsPersisted(len(batch))
		}

		offset += s.cfg.PageSize
		err = s.store.UpsertCrawlState(ctx, harvest.CrawlState{
			Tenant:     tenant,
			LastOffset: offset,
		})
		if err != nil {
			return fmt.Errorf("persist crawl state at offset %d: %w", offset, err)
		}
		s.logger.Debug("page committed",
			zap.String("tenant", tenant),
			zap.Int("jobs", len(batch)),
			zap.Int("next_offset", offset))

		// A short page signals the end of the listings.
		if len(stubs) != s.cfg.PageSize {
			break
		}
	}

	err = s.store.UpsertCrawlState(ctx, harvest.CrawlState{
		Tenant:     tenant,
		LastOffset: offset,
		Completed:  true,
	})
	if err != nil {
		return fmt.Errorf("mark tenant completed: %w", err)
	}
	metrics.ObserveTenantCompleted()
	s.logger.Info("tenant scrape completed",
		zap.String("tenant", tenant),
		zap.Int("final_offset", offset))
	return nil
}

// fetchDetails fans out to every stub's detail page concurrently and merges
// the survivors into job records. A failed or unparseable detail page is
// dropped from the batch; it never aborts the page.
func (s *Scraper) fetchDetails(ctx context.Context, tenant string, stubs []harvest.JobStub) []harvest.JobRecord {
	requests := make([]harvest.FetchRequest, len(stubs))
	for i, stub := range stubs {
		requests[i] = harvest.FetchRequest{
			URL:     s.cfg.Platform.ResolveURL(tenant, stub.URL),
			Timeout: s.cfg.DetailTimeout,
		}
	}

	start := time.Now()
	responses := fetcher.Batch(ctx, s.fetcher, requests)
	metrics.ObserveBatchFetch(time.Since(start))

	var (
		batch  []harvest.JobRecord
		failed int
	)
	for i, resp := range responses {
		if resp == nil {
			failed++
			continue
		}
		detail, err := extract.JobDetail(resp.Body)
		if err != nil {
			failed++
			s.logger.Debug("detail parse failed",
				zap.String("url", requests[i].URL),
				zap.Error(err))
			continue
		}
		batch = append(batch, s.mergeRecord(tenant, stubs[i], detail))
	}
	metrics.ObserveJobDetails(len(batch), failed)
	if failed > 0 {
		s.logger.Warn("detail fetches dropped",
			zap.String("tenant", tenant),
			zap.Int("dropped", failed),
			zap.Int("kept", len(batch)))
	}
	return batch
}

// mergeRecord combines a listing stub with its detail page. The persisted
// title prefers the metadata's own job title field over the page title.
func (s *Scraper) mergeRecord(tenant string, stub harvest.JobStub, detail harvest.JobDetail) harvest.JobRecord {
	title := detail.Title
	if t, ok := detail.Metadata.Get("job_title"); ok && t != "" {
		title = t
	}
	return harvest.JobRecord{
		JobID:       stub.JobID,
		Tenant:      tenant,
		Title:       title,
		Description: detail.DescriptionHTML,
		Location:    detail.Metadata.FindSubstring("location", "place", "city", "country"),
		DatePosted:  detail.Metadata.FindSubstring("date", "posted", "created"),
		ApplyURL:    stub.URL,
		Metadata:    detail.Metadata,
		ScrapedAt:   s.clock.Now(),
	}
}
