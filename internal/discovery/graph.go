// Package discovery finds live tenant instances of the careers platform.
package discovery

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobharvest/avharvest/internal/fetcher"
	"github.com/jobharvest/avharvest/internal/harvest"
	"github.com/jobharvest/avharvest/internal/metrics"
)

// GraphConfig bounds the breadth-first walk of the tenant namespace. The
// namespace graph is effectively unbounded and full of dead ends, so the
// walk degrades gracefully at the depth and size limits instead of running
// forever.
type GraphConfig struct {
	Platform     harvest.Platform
	Concurrency  int
	Timeout      time.Duration
	MaxDepth     int
	MaxTenants   int
	MinBodyBytes int
	Fingerprints []string
}

func (c *GraphConfig) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 20
	}
	if c.Timeout <= 0 {
		c.Timeout = 8 * time.Second
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 3
	}
	if c.MaxTenants <= 0 {
		c.MaxTenants = 500
	}
	if c.MinBodyBytes <= 0 {
		c.MinBodyBytes = 500
	}
	if len(c.Fingerprints) == 0 {
		c.Fingerprints = []string{"SearchJobs", "JobDetail", "avature"}
	}
	if c.Platform.RootDomain == "" {
		c.Platform = harvest.DefaultPlatform()
	}
}

// frontierNode is one not-yet-probed candidate in the walk.
type frontierNode struct {
	name  string
	depth int
}

// GraphCrawler explores the tenant namespace breadth-first. All queue and
// set mutation happens on the caller's goroutine after each batch barrier,
// so the crawler needs no locking despite the concurrent probes.
type GraphCrawler struct {
	cfg     GraphConfig
	fetcher harvest.Fetcher
	logger  *zap.Logger

	visited map[string]struct{}
	valid   []string
}

// NewGraphCrawler constructs a crawler. Visited state is private to one
// crawler instance; construct a fresh one per discovery run.
func NewGraphCrawler(cfg GraphConfig, f harvest.Fetcher, logger *zap.Logger) *GraphCrawler {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphCrawler{
		cfg:     cfg,
		fetcher: f,
		logger:  logger,
		visited: make(map[string]struct{}),
	}
}

// Crawl probes the seed names and every tenant name harvested from valid
// pages, depth- and size-bounded, and returns the canonical domains of all
// confirmed tenants.
func (g *GraphCrawler) Crawl(ctx context.Context, seeds []string) []string {
	queue := make([]frontierNode, 0, len(seeds))
	for _, seed := range seeds {
		queue = append(queue, frontierNode{name: strings.ToLower(seed)})
	}

	for len(queue) > 0 && len(g.valid) < g.cfg.MaxTenants {
		n := g.cfg.Concurrency
		if n > len(queue) {
			n = len(queue)
		}
		batch := queue[:n]
		queue = queue[n:]

		results := g.probeBatch(ctx, batch)

		for _, result := range results {
			if !result.valid {
				continue
			}
			if _, seen := g.visited[result.domain]; seen {
				continue
			}
			g.visited[result.domain] = struct{}{}
			g.valid = append(g.valid, result.domain)
			metrics.ObserveTenantDiscovered()
			g.logger.Info("tenant confirmed",
				zap.String("domain", result.domain),
				zap.Int("depth", result.depth))

			if result.depth+1 >= g.cfg.MaxDepth {
				continue
			}
			for _, child := range result.discovered {
				if _, seen := g.visited[g.cfg.Platform.CanonicalURL(child)]; seen {
					continue
				}
				queue = append(queue, frontierNode{name: child, depth: result.depth + 1})
			}
		}
	}

	return g.valid
}

type probeResult struct {
	domain     string
	depth      int
	valid      bool
	discovered []string
}

// probeBatch fetches one frontier batch concurrently and classifies each
// response. The batch barrier is the only suspension point in the walk.
func (g *GraphCrawler) probeBatch(ctx context.Context, batch []frontierNode) []probeResult {
	requests := make([]harvest.FetchRequest, len(batch))
	for i, node := range batch {
		requests[i] = harvest.FetchRequest{
			URL:     g.cfg.Platform.ProbeURL(node.name),
			Timeout: g.cfg.Timeout,
		}
	}

	start := time.Now()
	responses := fetcher.Batch(ctx, g.fetcher, requests)
	metrics.ObserveBatchFetch(time.Since(start))

	results := make([]probeResult, len(batch))
	for i, node := range batch {
		result := probeResult{
			domain: g.cfg.Platform.CanonicalURL(node.name),
			depth:  node.depth,
		}
		resp := responses[i]
		if resp != nil && resp.OK() && g.isPlatformPage(resp.Body) {
			result.valid = true
			result.discovered = g.cfg.Platform.ExtractTenantNames(string(resp.Body))
			metrics.ObserveProbe(metrics.OutcomeValid)
		} else {
			metrics.ObserveProbe(metrics.OutcomeInvalid)
			g.logger.Debug("probe rejected", zap.String("domain", result.domain))
		}
		results[i] = result
	}
	return results
}

// isPlatformPage is the cheap content fingerprint confirming a probed host
// actually runs the target platform rather than a wildcard landing page.
func (g *GraphCrawler) isPlatformPage(body []byte) bool {
	if len(body) < g.cfg.MinBodyBytes {
		return false
	}
	lower := strings.ToLower(string(body))
	for _, fp := range g.cfg.Fingerprints {
		if strings.Contains(lower, strings.ToLower(fp)) {
			return true
		}
	}
	return false
}
