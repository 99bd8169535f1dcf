package dexscreener

import (
	"fmt"
	"time"
)

// Config holds the DexScreener client settings.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	UserAgent      string        `yaml:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	Burst          int           `yaml:"burst"`
	MaxRetries     int           `yaml:"max_retries"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	SearchTTL      time.Duration `yaml:"search_ttl"`
	SeriesTTL      time.Duration `yaml:"series_ttl"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker kept per endpoint.
type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	ErrorRateThreshold  float64       `yaml:"error_rate_threshold"`
}

// DefaultConfig returns production defaults. DexScreener allows roughly 300
// search requests per minute.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://api.dexscreener.com",
		UserAgent:      "AgenticDeFiScreener/1.0",
		RequestTimeout: 10 * time.Second,
		RateLimitRPS:   4,
		Burst:          8,
		MaxRetries:     1,
		MaxConcurrency: 8,
		SearchTTL:      10 * time.Second,
		SeriesTTL:      30 * time.Second,
		Breaker: BreakerConfig{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 5,
			ErrorRateThreshold:  60,
		},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = d.RateLimitRPS
	}
	if c.Burst == 0 {
		c.Burst = d.Burst
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	if c.SearchTTL == 0 {
		c.SearchTTL = d.SearchTTL
	}
	if c.SeriesTTL == 0 {
		c.SeriesTTL = d.SeriesTTL
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = d.Breaker.MaxRequests
	}
	if c.Breaker.Interval == 0 {
		c.Breaker.Interval = d.Breaker.Interval
	}
	if c.Breaker.Timeout == 0 {
		c.Breaker.Timeout = d.Breaker.Timeout
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		c.Breaker.ConsecutiveFailures = d.Breaker.ConsecutiveFailures
	}
	if c.Breaker.ErrorRateThreshold == 0 {
		c.Breaker.ErrorRateThreshold = d.Breaker.ErrorRateThreshold
	}
	return c
}

// Validate checks the settings after defaults are applied.
func (c Config) Validate() error {
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must be >= 0, got %v", c.RateLimitRPS)
	}
	if c.Burst < 0 {
		return fmt.Errorf("burst must be >= 0, got %d", c.Burst)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.RequestTimeout < 0 || c.SearchTTL < 0 || c.SeriesTTL < 0 {
		return fmt.Errorf("timeouts and ttls must not be negative")
	}
	if c.Breaker.ErrorRateThreshold < 0 || c.Breaker.ErrorRateThreshold > 100 {
		return fmt.Errorf("breaker.error_rate_threshold must be within [0,100], got %v", c.Breaker.ErrorRateThreshold)
	}
	return nil
}
