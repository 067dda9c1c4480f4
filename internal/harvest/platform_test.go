package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformURLs(t *testing.T) {
	t.Parallel()

	p := DefaultPlatform()
	assert.Equal(t, "https://acme.avature.net", p.CanonicalURL("ACME"))
	assert.Equal(t, "https://acme.avature.net/careers", p.ProbeURL("acme"))
	assert.Equal(t,
		"https://acme.avature.net/careers/SearchJobs/?jobRecordsPerPage=50&jobOffset=100",
		p.ListingURL("https://acme.avature.net/", 50, 100),
	)
}

func TestPlatformResolveURL(t *testing.T) {
	t.Parallel()

	p := DefaultPlatform()
	assert.Equal(t,
		"https://acme.avature.net/careers/JobDetail/123",
		p.ResolveURL("https://acme.avature.net", "/careers/JobDetail/123"),
	)
	assert.Equal(t,
		"https://other.avature.net/careers/JobDetail/9",
		p.ResolveURL("https://acme.avature.net", "https://other.avature.net/careers/JobDetail/9"),
	)
	assert.Equal(t,
		"https://acme.avature.net/JobDetail/7",
		p.ResolveURL("https://acme.avature.net/", "JobDetail/7"),
	)
}

func TestPlatformExtractTenantNames(t *testing.T) {
	t.Parallel()

	p := DefaultPlatform()
	body := `<a href="https://Beta.avature.net/careers">jobs</a>
	plain text http://gamma-corp.avature.net/careers/SearchJobs
	again https://beta.avature.net/ and https://avature.example.com/nope`

	assert.Equal(t, []string{"beta", "gamma-corp"}, p.ExtractTenantNames(body))
	assert.Equal(t, "https://beta.avature.net", p.ExtractTenantURL(body))
	assert.Equal(t, "", p.ExtractTenantURL("no links here"))
}
