package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobharvest/avharvest/internal/harvest"
)

func TestUpsertTenantIdempotent(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	first := time.Unix(1000, 0)

	require.NoError(t, s.UpsertTenant(ctx, "https://acme.avature.net", first))
	require.NoError(t, s.UpsertTenant(ctx, "https://acme.avature.net", first.Add(time.Hour)))

	tenants, err := s.ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, first, tenants[0].DiscoveredAt, "re-discovery is a no-op")
}

func TestCrawlStateRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	state, err := s.GetCrawlState(ctx, "https://acme.avature.net")
	require.NoError(t, err)
	assert.Equal(t, 0, state.LastOffset)
	assert.False(t, state.Completed)

	require.NoError(t, s.UpsertCrawlState(ctx, harvest.CrawlState{
		Tenant: "https://acme.avature.net", LastOffset: 100,
	}))
	state, err = s.GetCrawlState(ctx, "https://acme.avature.net")
	require.NoError(t, err)
	assert.Equal(t, 100, state.LastOffset)
}

func TestInsertJobBatchDeduplicates(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	batch := []harvest.JobRecord{
		{JobID: "1", Tenant: "https://acme.avature.net", Title: "first write"},
		{JobID: "2", Tenant: "https://acme.avature.net"},
	}
	require.NoError(t, s.InsertJobBatch(ctx, batch))

	// Re-running the same batch after a simulated crash adds nothing.
	batch[0].Title = "second write"
	require.NoError(t, s.InsertJobBatch(ctx, batch))

	jobs, err := s.ListJobs(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, job := range jobs {
		if job.JobID == "1" {
			assert.Equal(t, "first write", job.Title, "first write wins")
		}
	}

	// Same id under a different tenant is a distinct row.
	require.NoError(t, s.InsertJobBatch(ctx, []harvest.JobRecord{
		{JobID: "1", Tenant: "https://beta.avature.net"},
	}))
	jobs, err = s.ListJobs(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestInsertJobBatchEmptyIDsNeverCollide(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	require.NoError(t, s.InsertJobBatch(ctx, []harvest.JobRecord{
		{Tenant: "https://acme.avature.net", Title: "a"},
		{Tenant: "https://acme.avature.net", Title: "b"},
	}))
	jobs, err := s.ListJobs(ctx, "https://acme.avature.net", 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestListJobsOrderFilterLimit(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	base := time.Unix(1000, 0)

	require.NoError(t, s.InsertJobBatch(ctx, []harvest.JobRecord{
		{JobID: "1", Tenant: "https://acme.avature.net", ScrapedAt: base},
		{JobID: "2", Tenant: "https://acme.avature.net", ScrapedAt: base.Add(time.Minute)},
		{JobID: "3", Tenant: "https://beta.avature.net", ScrapedAt: base.Add(2 * time.Minute)},
	}))

	jobs, err := s.ListJobs(ctx, "https://acme.avature.net", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "2", jobs[0].JobID, "newest scrape first")

	jobs, err = s.ListJobs(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "3", jobs[0].JobID)
}
