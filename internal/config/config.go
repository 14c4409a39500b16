// Package config defines service configuration and its loading.
//
// Values are layered: defaults from New, then an optional YAML file named
// by PMWIKI_CONFIG, then PMWIKI_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL is a PostgreSQL DSN. Empty selects the in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// ContentGlob locates YAML content files, e.g. "content/**/*.yaml".
	ContentGlob string `koanf:"content_glob"`

	// SeedOnStart loads ContentGlob into the store at startup.
	SeedOnStart bool `koanf:"seed_on_start"`

	// WatchContent reseeds the store when files matching ContentGlob change.
	WatchContent bool `koanf:"watch_content"`

	// SiteBaseURL is the public origin used in sitemap, robots and JSON-LD.
	SiteBaseURL string `koanf:"site_base_url"`

	// SecureCookie marks the compare session cookie Secure.
	SecureCookie bool `koanf:"secure_cookie"`

	// CompareMaxItems is the capacity of a visitor's compare set.
	CompareMaxItems int `koanf:"compare_max_items"`

	// CompareMaxSessions bounds live compare sessions; the least recently
	// used one is evicted beyond it.
	CompareMaxSessions int `koanf:"compare_max_sessions"`

	// CompareSessionTTL expires idle compare sessions.
	CompareSessionTTL time.Duration `koanf:"compare_session_ttl"`

	// RevalidateInterval is how often catalog listings are rebuilt.
	RevalidateInterval time.Duration `koanf:"revalidate_interval"`

	// SearchLimit caps search results.
	SearchLimit int `koanf:"search_limit"`

	// MaxRankingLimit caps GET /api/ranking?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// RecommendationLimit caps each similar-model list on a detail page.
	RecommendationLimit int `koanf:"recommendation_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		ContentGlob:         "content/**/*.yaml",
		SeedOnStart:         true,
		SiteBaseURL:         "https://pmwiki.kr",
		CompareMaxItems:     3,
		CompareMaxSessions:  10_000,
		CompareSessionTTL:   24 * time.Hour,
		RevalidateInterval:  time.Hour,
		SearchLimit:         30,
		MaxRankingLimit:     100,
		RecommendationLimit: 10,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !oneOf(c.LogLevel, "debug", "info", "warn", "error"):
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	case !oneOf(c.LogFormat, "text", "json"):
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.CompareMaxItems < 1:
		return fmt.Errorf("%w: compare_max_items must be positive", ErrInvalidConfig)
	case c.CompareMaxSessions < 0:
		return fmt.Errorf("%w: compare_max_sessions must not be negative", ErrInvalidConfig)
	case c.CompareSessionTTL < 0:
		return fmt.Errorf("%w: compare_session_ttl must not be negative", ErrInvalidConfig)
	case c.RevalidateInterval <= 0:
		return fmt.Errorf("%w: revalidate_interval must be positive", ErrInvalidConfig)
	case c.SearchLimit < 1:
		return fmt.Errorf("%w: search_limit must be positive", ErrInvalidConfig)
	case c.MaxRankingLimit < 1:
		return fmt.Errorf("%w: max_ranking_limit must be positive", ErrInvalidConfig)
	case c.RecommendationLimit < 1:
		return fmt.Errorf("%w: recommendation_limit must be positive", ErrInvalidConfig)
	}
	u, err := url.Parse(c.SiteBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: site_base_url %q must be an absolute URL", ErrInvalidConfig, c.SiteBaseURL)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
