package harvest

import (
	"fmt"
	"regexp"
	"strings"
)

// Platform describes the careers-portal SaaS being harvested. Every tenant
// lives on a dedicated subdomain of RootDomain and serves its public pages
// under CareersPath.
type Platform struct {
	RootDomain  string
	CareersPath string
}

// DefaultPlatform targets the hosted portal this harvester was built for.
func DefaultPlatform() Platform {
	return Platform{RootDomain: "avature.net", CareersPath: "/careers"}
}

// CanonicalURL returns the tenant's canonical base URL for a subdomain name.
func (p Platform) CanonicalURL(name string) string {
	return fmt.Sprintf("https://%s.%s", strings.ToLower(name), p.RootDomain)
}

// ProbeURL returns the public careers landing page used to fingerprint a
// candidate tenant.
func (p Platform) ProbeURL(name string) string {
	return p.CanonicalURL(name) + p.CareersPath
}

// ListingURL returns the offset-paginated listing endpoint for a tenant base
// URL.
func (p Platform) ListingURL(tenant string, pageSize, offset int) string {
	return fmt.Sprintf(
		"%s%s/SearchJobs/?jobRecordsPerPage=%d&jobOffset=%d",
		strings.TrimRight(tenant, "/"), p.CareersPath, pageSize, offset,
	)
}

// ResolveURL makes a stub's detail href absolute against the tenant base.
// Absolute URLs pass through untouched.
func (p Platform) ResolveURL(tenant, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base := strings.TrimRight(tenant, "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}

// TenantPattern matches outbound links to any tenant of the platform; the
// first capture group is the subdomain name. This is a cheap raw-HTML pass,
// deliberately separate from the structural extractor.
func (p Platform) TenantPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?i)https?://([a-z0-9\-]+)\.` + regexp.QuoteMeta(p.RootDomain))
}

// ExtractTenantURL pulls the first canonical tenant URL out of a line of
// text, or "" when none is present.
func (p Platform) ExtractTenantURL(text string) string {
	m := p.TenantPattern().FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return p.CanonicalURL(m[1])
}

// ExtractTenantNames returns the deduplicated lowercase subdomain names of
// every tenant link found in the text, in order of first appearance.
func (p Platform) ExtractTenantNames(text string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range p.TenantPattern().FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
