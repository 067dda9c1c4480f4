// Package harvest defines core types shared across subsystems.
package harvest

import (
	"net/http"
	"time"
)

// Tenant is one confirmed careers-portal instance, identified by its
// canonical base URL (scheme + lowercased subdomain + platform root).
type Tenant struct {
	Domain       string    `json:"domain"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// CrawlState is the pagination resume cursor for a single tenant.
// LastOffset only moves forward while Completed is false; once Completed
// is set the tenant is never re-scraped.
type CrawlState struct {
	Tenant     string `json:"tenant"`
	LastOffset int    `json:"last_offset"`
	Completed  bool   `json:"completed"`
}

// JobStub is the minimal record pulled from one listing-page row before
// detail enrichment. JobID is empty when the detail URL carries no trailing
// numeric segment.
type JobStub struct {
	JobID string `json:"job_id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// JobDetail holds the fields extracted from a job detail page.
type JobDetail struct {
	Title           string
	DescriptionHTML string
	DescriptionText string
	Metadata        *Metadata
}

// JobRecord is the persisted form of one job, unique per (JobID, Tenant).
type JobRecord struct {
	JobID       string    `json:"job_id"`
	Tenant      string    `json:"tenant"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	DatePosted  string    `json:"date_posted"`
	ApplyURL    string    `json:"apply_url"`
	Metadata    *Metadata `json:"metadata"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// FetchRequest captures everything needed to fetch one URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
	Timeout time.Duration
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the response carries a 2xx status.
func (r FetchResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
