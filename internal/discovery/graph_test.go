package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobharvest/avharvest/internal/harvest"
)

// mapFetcher serves canned bodies by URL and records every probe.
type mapFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	probes []string
}

func (m *mapFetcher) Fetch(_ context.Context, req harvest.FetchRequest) (harvest.FetchResponse, error) {
	m.mu.Lock()
	m.probes = append(m.probes, req.URL)
	m.mu.Unlock()

	body, ok := m.pages[req.URL]
	if !ok {
		return harvest.FetchResponse{}, errors.New("no such host")
	}
	return harvest.FetchResponse{URL: req.URL, StatusCode: 200, Body: []byte(body)}, nil
}

func (m *mapFetcher) probeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.probes)
}

// portalPage fabricates a fingerprint-bearing body over the minimum length,
// embedding the given outbound tenant links.
func portalPage(links ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><a href="/careers/SearchJobs/">Search Jobs</a>`)
	for _, link := range links {
		b.WriteString(`<a href="` + link + `">partner</a>`)
	}
	b.WriteString(strings.Repeat("<!-- filler -->", 40))
	b.WriteString("</body></html>")
	return b.String()
}

func TestCrawlFollowsEmbeddedTenantLinks(t *testing.T) {
	t.Parallel()

	f := &mapFetcher{pages: map[string]string{
		"https://acme.avature.net/careers": portalPage("https://beta.avature.net/careers"),
		"https://beta.avature.net/careers": portalPage(),
	}}
	g := NewGraphCrawler(GraphConfig{MaxDepth: 2}, f, nil)

	got := g.Crawl(context.Background(), []string{"acme"})
	assert.Equal(t, []string{"https://acme.avature.net", "https://beta.avature.net"}, got)
	assert.Len(t, g.visited, 2)
}

func TestCrawlDepthBound(t *testing.T) {
	t.Parallel()

	f := &mapFetcher{pages: map[string]string{
		"https://acme.avature.net/careers":  portalPage("https://beta.avature.net/x"),
		"https://beta.avature.net/careers":  portalPage("https://gamma.avature.net/x"),
		"https://gamma.avature.net/careers": portalPage(),
	}}
	g := NewGraphCrawler(GraphConfig{MaxDepth: 2}, f, nil)

	got := g.Crawl(context.Background(), []string{"acme"})
	require.Equal(t, []string{"https://acme.avature.net", "https://beta.avature.net"}, got)

	// beta sits at depth 1; its children would be depth 2 = maxDepth and
	// must never be enqueued, let alone probed.
	for _, probed := range f.probes {
		assert.NotContains(t, probed, "gamma")
	}
}

func TestCrawlDeduplicatesCanonicalDomains(t *testing.T) {
	t.Parallel()

	f := &mapFetcher{pages: map[string]string{
		"https://acme.avature.net/careers": portalPage(),
	}}
	g := NewGraphCrawler(GraphConfig{}, f, nil)

	got := g.Crawl(context.Background(), []string{"acme", "ACME"})
	assert.Equal(t, []string{"https://acme.avature.net"}, got)
}

func TestCrawlStopsAtMaxTenants(t *testing.T) {
	t.Parallel()

	f := &mapFetcher{pages: map[string]string{
		"https://one.avature.net/careers": portalPage(),
		"https://two.avature.net/careers": portalPage(),
	}}
	g := NewGraphCrawler(GraphConfig{MaxTenants: 1, Concurrency: 1}, f, nil)

	got := g.Crawl(context.Background(), []string{"one", "two"})
	assert.Equal(t, []string{"https://one.avature.net"}, got)
	assert.Equal(t, 1, f.probeCount(), "second candidate never probed once the cap is hit")
}

func TestCrawlRejectsNonPlatformHosts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"fingerprint missing", "<html>" + strings.Repeat("unrelated content ", 50) + "</html>"},
		{"body too short", "SearchJobs"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := &mapFetcher{pages: map[string]string{
				"https://acme.avature.net/careers": tc.body,
			}}
			g := NewGraphCrawler(GraphConfig{}, f, nil)
			assert.Empty(t, g.Crawl(context.Background(), []string{"acme"}))
		})
	}
}

func TestCrawlSurvivesFetchFailures(t *testing.T) {
	t.Parallel()

	f := &mapFetcher{pages: map[string]string{
		"https://up.avature.net/careers": portalPage(),
	}}
	g := NewGraphCrawler(GraphConfig{Timeout: time.Second}, f, nil)

	got := g.Crawl(context.Background(), []string{"down", "up"})
	assert.Equal(t, []string{"https://up.avature.net"}, got)
}
