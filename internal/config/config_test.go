package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("db:\n  dsn: postgres://localhost/harvest\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Platform.RootDomain != "avature.net" {
		t.Errorf("root_domain = %q, want avature.net", cfg.Platform.RootDomain)
	}
	if cfg.Discovery.Concurrency != 20 {
		t.Errorf("discovery.concurrency = %d, want 20", cfg.Discovery.Concurrency)
	}
	if cfg.Discovery.MaxTenants != 500 {
		t.Errorf("discovery.max_tenants = %d, want 500", cfg.Discovery.MaxTenants)
	}
	if cfg.Scraper.PageSize != 50 {
		t.Errorf("scraper.page_size = %d, want 50", cfg.Scraper.PageSize)
	}
	if got := cfg.DiscoveryTimeout(); got != 8*time.Second {
		t.Errorf("DiscoveryTimeout = %v, want 8s", got)
	}
	if got := cfg.HarvestInterval(); got != 12*time.Hour {
		t.Errorf("HarvestInterval = %v, want 12h", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
platform:
  root_domain: example-ats.com
  careers_path: /jobs
discovery:
  concurrency: 5
  max_depth: 2
  max_tenants: 40
  seed_companies: [acme, globex]
search:
  api_key: sk-test
  queries: ["site:example-ats.com careers"]
scraper:
  page_size: 25
store:
  kind: memory
server:
  port: 9090
export:
  format: csv
scheduler:
  enabled: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Platform.RootDomain != "example-ats.com" {
		t.Errorf("root_domain = %q", cfg.Platform.RootDomain)
	}
	if cfg.Discovery.Concurrency != 5 {
		t.Errorf("discovery.concurrency = %d, want 5", cfg.Discovery.Concurrency)
	}
	if len(cfg.Discovery.SeedCompanies) != 2 {
		t.Errorf("seed_companies = %v", cfg.Discovery.SeedCompanies)
	}
	if cfg.Search.APIKey != "sk-test" {
		t.Errorf("search.api_key = %q", cfg.Search.APIKey)
	}
	if cfg.Scraper.PageSize != 25 {
		t.Errorf("scraper.page_size = %d, want 25", cfg.Scraper.PageSize)
	}
	if cfg.Store.Kind != "memory" {
		t.Errorf("store.kind = %q", cfg.Store.Kind)
	}
	if cfg.Export.Format != "csv" {
		t.Errorf("export.format = %q", cfg.Export.Format)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AVHARVEST_STORE_KIND", "memory")
	t.Setenv("AVHARVEST_SERVER_PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Kind != "memory" {
		t.Errorf("store.kind = %q, want memory", cfg.Store.Kind)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing dsn for postgres",
			mutate:  func(c *Config) { c.DB.DSN = "" },
			wantErr: "db.dsn",
		},
		{
			name:    "unknown store kind",
			mutate:  func(c *Config) { c.Store.Kind = "etcd" },
			wantErr: "store.kind",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Discovery.Concurrency = 0 },
			wantErr: "discovery.concurrency",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.Scraper.PageSize = 0 },
			wantErr: "scraper.page_size",
		},
		{
			name:    "bad export format",
			mutate:  func(c *Config) { c.Export.Format = "xml" },
			wantErr: "export.format",
		},
		{
			name:    "scheduler without interval",
			mutate:  func(c *Config) { c.Scheduler.IntervalHours = 0 },
			wantErr: "scheduler.interval_hours",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate passed, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func validConfig() Config {
	return Config{
		Platform:  PlatformConfig{RootDomain: "avature.net", CareersPath: "/careers"},
		Discovery: DiscoveryConfig{Concurrency: 20, TimeoutSeconds: 8, MaxDepth: 3, MaxTenants: 500},
		Scraper:   ScraperConfig{PageSize: 50, ListingTimeoutSeconds: 30, DetailTimeoutSeconds: 30},
		Store:     StoreConfig{Kind: "postgres"},
		DB:        DBConfig{DSN: "postgres://localhost/harvest"},
		Server:    ServerConfig{Port: 8080},
		Export:    ExportConfig{Dir: "exports", Format: "json"},
		Scheduler: SchedulerConfig{Enabled: true, IntervalHours: 12},
	}
}
