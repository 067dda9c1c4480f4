package postgres

// schema is the full relational schema. NULL job ids deliberately escape the
// uniqueness key: a detail URL without a trailing numeric segment produces a
// row per scrape, which callers treat as a known limitation.
const schema = `
CREATE TABLE IF NOT EXISTS tenants (
	domain        TEXT PRIMARY KEY,
	discovered_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS crawl_state (
	tenant      TEXT PRIMARY KEY,
	last_offset BIGINT NOT NULL DEFAULT 0,
	completed   BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS jobs (
	job_id      TEXT,
	tenant      TEXT NOT NULL,
	title       TEXT,
	description TEXT,
	location    TEXT,
	date_posted TEXT,
	apply_url   TEXT,
	metadata    JSONB,
	scraped_at  TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS jobs_job_id_tenant_idx ON jobs (job_id, tenant);
CREATE INDEX IF NOT EXISTS jobs_tenant_scraped_at_idx ON jobs (tenant, scraped_at DESC);
`
