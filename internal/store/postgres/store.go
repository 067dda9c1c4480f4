// Package postgres provides the pgx-backed persistence implementation.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobharvest/avharvest/internal/harvest"
)

// DB is the subset of pgxpool.Pool the store needs. Narrowing the surface
// lets tests drive the store with pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store implements harvest.Store on Postgres.
type Store struct {
	db DB
}

// New connects a pool and pings it to fail fast on bad credentials.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: pool}, nil
}

// NewWithDB constructs a store from an existing pool (primarily for testing).
func NewWithDB(db DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	s.db.Close()
}

// Migrate applies the schema. Every statement is IF NOT EXISTS so repeated
// startup is harmless.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// UpsertTenant inserts a tenant row; re-discovery is a no-op.
func (s *Store) UpsertTenant(ctx context.Context, domain string, discoveredAt time.Time) error {
	query := `
		INSERT INTO tenants (domain, discovered_at)
		VALUES ($1, $2)
		ON CONFLICT (domain) DO NOTHING;
	`
	if _, err := s.db.Exec(ctx, query, domain, discoveredAt); err != nil {
		return fmt.Errorf("upsert tenant: %w", err)
	}
	return nil
}

// ListTenants returns every known tenant.
func (s *Store) ListTenants(ctx context.Context) ([]harvest.Tenant, error) {
	rows, err := s.db.Query(ctx, `SELECT domain, discovered_at FROM tenants ORDER BY domain;`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []harvest.Tenant
	for rows.Next() {
		var t harvest.Tenant
		if err := rows.Scan(&t.Domain, &t.DiscoveredAt); err != nil {
			return nil, fmt.Errorf("scan tenant row: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant rows: %w", err)
	}
	return tenants, nil
}

// GetCrawlState returns the resume cursor for a tenant, or the zero state
// when none has been recorded yet.
func (s *Store) GetCrawlState(ctx context.Context, tenant string) (harvest.CrawlState, error) {
	state := harvest.CrawlState{Tenant: tenant}
	query := `SELECT last_offset, completed FROM crawl_state WHERE tenant = $1;`
	err := s.db.QueryRow(ctx, query, tenant).Scan(&state.LastOffset, &state.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return harvest.CrawlState{}, fmt.Errorf("get crawl state: %w", err)
	}
	return state, nil
}

// UpsertCrawlState inserts or replaces the cursor keyed by tenant.
func (s *Store) UpsertCrawlState(ctx context.Context, state harvest.CrawlState) error {
	query := `
		INSERT INTO crawl_state (tenant, last_offset, completed)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant) DO UPDATE SET
			last_offset = EXCLUDED.last_offset,
			completed = EXCLUDED.completed;
	`
	if _, err := s.db.Exec(ctx, query, state.Tenant, state.LastOffset, state.Completed); err != nil {
		return fmt.Errorf("upsert crawl state: %w", err)
	}
	return nil
}

// InsertJobBatch writes a page's worth of jobs in one transaction. Each row
// is insert-if-absent on (job_id, tenant); any row error rolls back the
// whole batch.
func (s *Store) InsertJobBatch(ctx context.Context, jobs []harvest.JobRecord) error {
	if len(jobs) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin job batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO jobs (job_id, tenant, title, description, location, date_posted, apply_url, metadata, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (job_id, tenant) DO NOTHING;
	`
	for _, job := range jobs {
		metadata, err := json.Marshal(job.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for job %q: %w", job.JobID, err)
		}
		_, err = tx.Exec(ctx, query,
			textOrNil(job.JobID),
			job.Tenant,
			textOrNil(job.Title),
			textOrNil(job.Description),
			textOrNil(job.Location),
			textOrNil(job.DatePosted),
			textOrNil(job.ApplyURL),
			metadata,
			job.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("insert job %q for %s: %w", job.JobID, job.Tenant, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit job batch: %w", err)
	}
	return nil
}

// ListJobs returns stored jobs newest-scrape first, optionally filtered by
// tenant. A limit <= 0 means no limit.
func (s *Store) ListJobs(ctx context.Context, tenant string, limit int) ([]harvest.JobRecord, error) {
	query := `
		SELECT job_id, tenant, title, description, location, date_posted, apply_url, metadata, scraped_at
		FROM jobs
	`
	var args []any
	if tenant != "" {
		query += ` WHERE tenant = $1`
		args = append(args, tenant)
	}
	query += ` ORDER BY scraped_at DESC`
	if limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1)
		args = append(args, limit)
	}
	query += `;`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []harvest.JobRecord
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job rows: %w", err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (harvest.JobRecord, error) {
	var (
		job                                                 harvest.JobRecord
		jobID, title, description, location, date, applyURL *string
		metadata                                            []byte
	)
	err := row.Scan(&jobID, &job.Tenant, &title, &description, &location, &date, &applyURL, &metadata, &job.ScrapedAt)
	if err != nil {
		return harvest.JobRecord{}, fmt.Errorf("scan job row: %w", err)
	}
	job.JobID = deref(jobID)
	job.Title = deref(title)
	job.Description = deref(description)
	job.Location = deref(location)
	job.DatePosted = deref(date)
	job.ApplyURL = deref(applyURL)
	if len(metadata) > 0 {
		job.Metadata = harvest.NewMetadata()
		if err := json.Unmarshal(metadata, job.Metadata); err != nil {
			return harvest.JobRecord{}, fmt.Errorf("decode job metadata: %w", err)
		}
	}
	return job, nil
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
