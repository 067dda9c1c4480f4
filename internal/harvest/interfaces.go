package harvest

import (
	"context"
	"time"
)

// Store persists tenants, per-tenant crawl progress, and job records.
// Every write is safe to repeat with identical input: re-running a batch
// that partially succeeded before a crash must not duplicate rows or error.
type Store interface {
	// UpsertTenant inserts a tenant by canonical URL; re-discovery is a no-op.
	UpsertTenant(ctx context.Context, domain string, discoveredAt time.Time) error

	// ListTenants returns every known tenant.
	ListTenants(ctx context.Context) ([]Tenant, error)

	// GetCrawlState returns the resume cursor for a tenant, or the zero
	// state {offset 0, not completed} when none has been recorded.
	GetCrawlState(ctx context.Context, tenant string) (CrawlState, error)

	// UpsertCrawlState inserts or replaces the cursor keyed by tenant.
	UpsertCrawlState(ctx context.Context, state CrawlState) error

	// InsertJobBatch writes a page's worth of jobs in one transaction.
	// Each row is insert-if-absent on (job_id, tenant); any row-level error
	// rolls back the entire batch.
	InsertJobBatch(ctx context.Context, jobs []JobRecord) error

	// ListJobs returns stored jobs ordered by scrape time descending,
	// optionally filtered by tenant. A limit <= 0 means no limit.
	ListJobs(ctx context.Context, tenant string, limit int) ([]JobRecord, error)
}

// Fetcher fetches a single URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside of tests.
type SystemClock struct{}

// Now returns the wall-clock time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
