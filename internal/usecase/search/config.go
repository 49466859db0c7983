package search

import "time"

// Popular search limits.
const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50
)

// Config tunes caching and the time budgets of the search pipeline.
type Config struct {
	ResultTTL  time.Duration
	FacetsTTL  time.Duration
	PopularTTL time.Duration
	// PopularWindow is how far back popular searches are aggregated.
	PopularWindow time.Duration
	// EnhancerTimeout bounds the language-model call; on expiry the search
	// continues with the raw query.
	EnhancerTimeout time.Duration
	// BackgroundTimeout bounds each asynchronous cache write and event record.
	BackgroundTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ResultTTL:         5 * time.Minute,
		FacetsTTL:         time.Hour,
		PopularTTL:        time.Hour,
		PopularWindow:     7 * 24 * time.Hour,
		EnhancerTimeout:   8 * time.Second,
		BackgroundTimeout: 5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ResultTTL <= 0 {
		c.ResultTTL = d.ResultTTL
	}
	if c.FacetsTTL <= 0 {
		c.FacetsTTL = d.FacetsTTL
	}
	if c.PopularTTL <= 0 {
		c.PopularTTL = d.PopularTTL
	}
	if c.PopularWindow <= 0 {
		c.PopularWindow = d.PopularWindow
	}
	if c.EnhancerTimeout <= 0 {
		c.EnhancerTimeout = d.EnhancerTimeout
	}
	if c.BackgroundTimeout <= 0 {
		c.BackgroundTimeout = d.BackgroundTimeout
	}
	return c
}
