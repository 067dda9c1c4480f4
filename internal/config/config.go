// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Platform  PlatformConfig  `mapstructure:"platform"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Search    SearchConfig    `mapstructure:"search"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Store     StoreConfig     `mapstructure:"store"`
	DB        DBConfig        `mapstructure:"db"`
	Server    ServerConfig    `mapstructure:"server"`
	Export    ExportConfig    `mapstructure:"export"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PlatformConfig identifies the SaaS careers platform being harvested.
type PlatformConfig struct {
	RootDomain  string `mapstructure:"root_domain"`
	CareersPath string `mapstructure:"careers_path"`
}

// DiscoveryConfig governs the tenant discovery graph crawl.
type DiscoveryConfig struct {
	Concurrency    int      `mapstructure:"concurrency"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxDepth       int      `mapstructure:"max_depth"`
	MaxTenants     int      `mapstructure:"max_tenants"`
	MinBodyBytes   int      `mapstructure:"min_body_bytes"`
	UserAgent      string   `mapstructure:"user_agent"`
	SeedsFile      string   `mapstructure:"seeds_file"`
	SeedCompanies  []string `mapstructure:"seed_companies"`
}

// SearchConfig configures the optional web-search discovery source.
type SearchConfig struct {
	Endpoint string   `mapstructure:"endpoint"`
	APIKey   string   `mapstructure:"api_key"`
	Pages    int      `mapstructure:"pages"`
	PageSize int      `mapstructure:"page_size"`
	Queries  []string `mapstructure:"queries"`
}

// ScraperConfig governs the per-tenant pagination crawl.
type ScraperConfig struct {
	PageSize              int    `mapstructure:"page_size"`
	ListingTimeoutSeconds int    `mapstructure:"listing_timeout_seconds"`
	DetailTimeoutSeconds  int    `mapstructure:"detail_timeout_seconds"`
	UserAgent             string `mapstructure:"user_agent"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Kind string `mapstructure:"kind"` // postgres or memory
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ExportConfig sets where and how harvested jobs are dumped.
type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

// SchedulerConfig controls the periodic harvest in serve mode.
type SchedulerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	IntervalHours int  `mapstructure:"interval_hours"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AVHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("platform.root_domain", "avature.net")
	v.SetDefault("platform.careers_path", "/careers")
	v.SetDefault("discovery.concurrency", 20)
	v.SetDefault("discovery.timeout_seconds", 8)
	v.SetDefault("discovery.max_depth", 3)
	v.SetDefault("discovery.max_tenants", 500)
	v.SetDefault("discovery.min_body_bytes", 500)
	v.SetDefault("discovery.user_agent", "avharvest-discovery/0.1")
	v.SetDefault("discovery.seeds_file", "")
	v.SetDefault("search.endpoint", "https://google.serper.dev/search")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.pages", 2)
	v.SetDefault("search.page_size", 10)
	v.SetDefault("scraper.page_size", 50)
	v.SetDefault("scraper.listing_timeout_seconds", 30)
	v.SetDefault("scraper.detail_timeout_seconds", 30)
	v.SetDefault("scraper.user_agent", "avharvest-scraper/0.1")
	v.SetDefault("store.kind", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.format", "json")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval_hours", 12)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Platform.RootDomain == "" {
		return fmt.Errorf("platform.root_domain must be set")
	}
	if c.Discovery.Concurrency <= 0 {
		return fmt.Errorf("discovery.concurrency must be > 0")
	}
	if c.Discovery.MaxDepth <= 0 {
		return fmt.Errorf("discovery.max_depth must be > 0")
	}
	if c.Discovery.MaxTenants <= 0 {
		return fmt.Errorf("discovery.max_tenants must be > 0")
	}
	if c.Scraper.PageSize <= 0 {
		return fmt.Errorf("scraper.page_size must be > 0")
	}
	switch c.Store.Kind {
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set for the postgres store")
		}
	case "memory":
	default:
		return fmt.Errorf("store.kind must be postgres or memory, got %q", c.Store.Kind)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scheduler.Enabled && c.Scheduler.IntervalHours <= 0 {
		return fmt.Errorf("scheduler.interval_hours must be > 0 when the scheduler is enabled")
	}
	switch c.Export.Format {
	case "json", "csv":
	default:
		return fmt.Errorf("export.format must be json or csv, got %q", c.Export.Format)
	}
	return nil
}

// DiscoveryTimeout returns the probe timeout as a duration.
func (c Config) DiscoveryTimeout() time.Duration {
	return time.Duration(c.Discovery.TimeoutSeconds) * time.Second
}

// ListingTimeout returns the listing fetch timeout as a duration.
func (c Config) ListingTimeout() time.Duration {
	return time.Duration(c.Scraper.ListingTimeoutSeconds) * time.Second
}

// DetailTimeout returns the detail fetch timeout as a duration.
func (c Config) DetailTimeout() time.Duration {
	return time.Duration(c.Scraper.DetailTimeoutSeconds) * time.Second
}

// HarvestInterval returns the scheduler period as a duration.
func (c Config) HarvestInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalHours) * time.Hour
}
