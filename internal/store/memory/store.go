// Package memory provides an in-memory Store for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jobharvest/avharvest/internal/harvest"
)

type jobKey struct {
	jobID  string
	tenant string
}

// Store implements harvest.Store with the same idempotence semantics as the
// Postgres implementation, minus durability.
type Store struct {
	mu     sync.RWMutex
	tenant map[string]harvest.Tenant
	state  map[string]harvest.CrawlState
	jobs   []harvest.JobRecord
	seen   map[jobKey]struct{}
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		tenant: make(map[string]harvest.Tenant),
		state:  make(map[string]harvest.CrawlState),
		seen:   make(map[jobKey]struct{}),
	}
}

// UpsertTenant inserts a tenant; re-discovery keeps the original timestamp.
func (s *Store) UpsertTenant(_ context.Context, domain string, discoveredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tenant[domain]; exists {
		return nil
	}
	s.tenant[domain] = harvest.Tenant{Domain: domain, DiscoveredAt: discoveredAt}
	return nil
}

// ListTenants returns tenants ordered by domain.
func (s *Store) ListTenants(_ context.Context) ([]harvest.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]harvest.Tenant, 0, len(s.tenant))
	for _, t := range s.tenant {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out, nil
}

// GetCrawlState returns the cursor or the zero state when absent.
func (s *Store) GetCrawlState(_ context.Context, tenant string) (harvest.CrawlState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.state[tenant]; ok {
		return state, nil
	}
	return harvest.CrawlState{Tenant: tenant}, nil
}

// UpsertCrawlState replaces the cursor keyed by tenant.
func (s *Store) UpsertCrawlState(_ context.Context, state harvest.CrawlState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[state.Tenant] = state
	return nil
}

// InsertJobBatch appends each previously unseen (job_id, tenant) row. Rows
// with an empty job id never collide, mirroring NULL behavior in Postgres.
func (s *Store) InsertJobBatch(_ context.Context, jobs []harvest.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range jobs {
		if job.JobID != "" {
			key := jobKey{jobID: job.JobID, tenant: job.Tenant}
			if _, dup := s.seen[key]; dup {
				continue
			}
			s.seen[key] = struct{}{}
		}
		s.jobs = append(s.jobs, job)
	}
	return nil
}

// ListJobs returns jobs newest-scrape first, optionally filtered by tenant.
func (s *Store) ListJobs(_ context.Context, tenant string, limit int) ([]harvest.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []harvest.JobRecord
	for _, job := range s.jobs {
		if tenant != "" && job.Tenant != tenant {
			continue
		}
		out = append(out, job)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScrapedAt.After(out[j].ScrapedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
