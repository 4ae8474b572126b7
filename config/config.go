package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonwraymond/fontops/observe"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the fontopsd configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// MaxConnections caps concurrently accepted connections. 0 means no cap.
	MaxConnections int `yaml:"max_connections"`

	// RequestTimeout bounds how long a request waits for an artifact.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// DataDir is the service data root. StaticDir and FontsDir default to
	// its static and fonts subdirectories.
	DataDir   string `yaml:"data_dir"`
	StaticDir string `yaml:"static_dir"`
	FontsDir  string `yaml:"fonts_dir"`

	// CacheCleanupDays is the age after which composite artifacts are
	// swept. 0 disables the sweeper.
	CacheCleanupDays int `yaml:"cache_cleanup_days"`

	// SweepInterval is how often the sweeper runs.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	Generation GenerationConfig `yaml:"generation"`
	HotCache   HotCacheConfig   `yaml:"hot_cache"`
	Admin      AdminConfig      `yaml:"admin"`
	Observe    observe.Config   `yaml:"observe"`
}

// GenerationConfig tunes subset generation.
type GenerationConfig struct {
	// Concurrency caps generations running at once.
	Concurrency int `yaml:"concurrency"`

	// QueueWait is how long a generation waits for a free slot.
	QueueWait time.Duration `yaml:"queue_wait"`

	// Parallelism caps per-font subset builds within one generation.
	Parallelism int `yaml:"parallelism"`

	// Quality is the brotli quality, 0 to 11.
	Quality int `yaml:"quality"`
}

// HotCacheConfig sizes the in-memory artifact layer. MaxBytes 0 disables it.
type HotCacheConfig struct {
	MaxBytes int64         `yaml:"max_bytes"`
	TTL      time.Duration `yaml:"ttl"`
}

// APIKey is one admin API key.
type APIKey struct {
	ID  string `yaml:"id"`
	Key string `yaml:"key"`
}

// AdminConfig configures the regeneration endpoint. With no API keys and
// no JWT secret the endpoint is unauthenticated.
type AdminConfig struct {
	APIKeys     []APIKey `yaml:"api_keys"`
	JWTSecret   string   `yaml:"jwt_secret"`
	JWTIssuer   string   `yaml:"jwt_issuer"`
	JWTAudience string   `yaml:"jwt_audience"`

	// RateLimit is the per-client request rate in requests per second.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// Enabled reports whether any admin credential is configured.
func (a AdminConfig) Enabled() bool {
	return len(a.APIKeys) > 0 || a.JWTSecret != ""
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	cfg := Config{
		Listen:           ":3000",
		RequestTimeout:   30 * time.Second,
		DataDir:          "data",
		CacheCleanupDays: 7,
		SweepInterval:    24 * time.Hour,
		Generation: GenerationConfig{
			Concurrency: 4,
			QueueWait:   30 * time.Second,
			Parallelism: 4,
			Quality:     11,
		},
		HotCache: HotCacheConfig{
			MaxBytes: 64 << 20,
			TTL:      10 * time.Minute,
		},
		Admin: AdminConfig{RateLimit: 1, Burst: 5},
		Observe: observe.Config{
			ServiceName: "fontops",
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
	cfg.derive()
	return cfg
}

// derive fills directories left empty from DataDir.
func (c *Config) derive() {
	if c.StaticDir == "" {
		c.StaticDir = filepath.Join(c.DataDir, "static")
	}
	if c.FontsDir == "" {
		c.FontsDir = filepath.Join(c.DataDir, "fonts")
	}
}

// CleanupAge returns the sweep age, 0 when sweeping is disabled.
func (c Config) CleanupAge() time.Duration {
	return time.Duration(c.CacheCleanupDays) * 24 * time.Hour
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.Listen) == "" {
		add("listen is required")
	}
	if c.MaxConnections < 0 {
		add("max_connections must be >= 0")
	}
	if c.RequestTimeout <= 0 {
		add("request_timeout must be > 0")
	}
	if strings.TrimSpace(c.StaticDir) == "" || strings.TrimSpace(c.FontsDir) == "" {
		add("static_dir and fonts_dir are required")
	}
	if c.CacheCleanupDays < 0 {
		add("cache_cleanup_days must be >= 0")
	}
	if c.CacheCleanupDays > 0 && c.SweepInterval <= 0 {
		add("sweep_interval must be > 0 when cache_cleanup_days is set")
	}
	if c.Generation.Concurrency < 1 {
		add("generation.concurrency must be >= 1")
	}
	if c.Generation.Parallelism < 1 {
		add("generation.parallelism must be >= 1")
	}
	if c.Generation.Quality < 0 || c.Generation.Quality > 11 {
		add("generation.quality must be within 0..11")
	}
	if c.HotCache.MaxBytes < 0 {
		add("hot_cache.max_bytes must be >= 0")
	}
	if c.Admin.RateLimit <= 0 || c.Admin.Burst < 1 {
		add("admin.rate_limit must be > 0 and admin.burst >= 1")
	}
	seen := make(map[string]bool, len(c.Admin.APIKeys))
	for i, k := range c.Admin.APIKeys {
		switch {
		case k.ID == "" || k.Key == "":
			add("admin.api_keys[%d]: id and key are required", i)
		case seen[k.ID]:
			add("admin.api_keys[%d]: duplicate id %q", i, k.ID)
		}
		seen[k.ID] = true
	}
	if err := c.Observe.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: observe: %w", ErrInvalidConfig, err))
	}
	return errors.Join(errs...)
}
