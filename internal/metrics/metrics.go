// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Probe and fetch outcome label values.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeEmpty   = "empty"
)

var (
	tenantsProbedTotal        *prometheus.CounterVec
	tenantsDiscoveredTotal    prometheus.Counter
	tenantsCompletedTotal     prometheus.Counter
	listingPagesTotal         *prometheus.CounterVec
	jobDetailsTotal           *prometheus.CounterVec
	jobsPersistedTotal        prometheus.Counter
	batchFetchDurationSeconds prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		tenantsProbedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_tenants_probed_total",
				Help: "Total tenant candidates probed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		tenantsDiscoveredTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_tenants_discovered_total",
				Help: "Total valid tenants added to the discovery result set.",
			},
		)

		tenantsCompletedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_tenants_completed_total",
				Help: "Total tenants whose listing crawl reached natural termination.",
			},
		)

		listingPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_listing_pages_total",
				Help: "Total listing pages fetched, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		jobDetailsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_job_details_total",
				Help: "Total job detail fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		jobsPersistedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_jobs_persisted_total",
				Help: "Total job rows handed to the store for insertion.",
			},
		)

		batchFetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harvester_batch_fetch_duration_seconds",
				Help:    "Histogram of batch fetch round durations.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProbe counts one tenant probe with its outcome.
func ObserveProbe(outcome string) {
	if tenantsProbedTotal == nil {
		return
	}
	tenantsProbedTotal.WithLabelValues(outcome).Inc()
}

// ObserveTenantDiscovered counts a tenant added to the result set.
func ObserveTenantDiscovered() {
	if tenantsDiscoveredTotal == nil {
		return
	}
	tenantsDiscoveredTotal.Inc()
}

// ObserveTenantCompleted counts a tenant whose crawl finished naturally.
func ObserveTenantCompleted() {
	if tenantsCompletedTotal == nil {
		return
	}
	tenantsCompletedTotal.Inc()
}

// ObserveListingPage counts one listing page fetch with its outcome.
func ObserveListingPage(outcome string) {
	if listingPagesTotal == nil {
		return
	}
	listingPagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveJobDetails counts detail fetch outcomes for one listing page.
func ObserveJobDetails(ok, failed int) {
	if jobDetailsTotal == nil {
		return
	}
	jobDetailsTotal.WithLabelValues(OutcomeOK).Add(float64(ok))
	jobDetailsTotal.WithLabelValues(OutcomeFailed).Add(float64(failed))
}

// AddJobsPersisted counts rows handed to the store.
func AddJobsPersisted(n int) {
	if jobsPersistedTotal == nil || n <= 0 {
		return
	}
	jobsPersistedTotal.Add(float64(n))
}

// ObserveBatchFetch records the duration of one batch fetch round.
func ObserveBatchFetch(d time.Duration) {
	if batchFetchDurationSeconds == nil {
		return
	}
	batchFetchDurationSeconds.Observe(d.Seconds())
}
