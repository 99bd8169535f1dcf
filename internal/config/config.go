package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/providers/dexscreener"
	"github.com/sawpanic/pairscreen/internal/series"
)

// Config is the complete screener configuration.
type Config struct {
	Server      ServerConfig       `yaml:"server"`
	DexScreener dexscreener.Config `yaml:"dexscreener"`
	Series      series.Config      `yaml:"series"`
	Cache       CacheConfig        `yaml:"cache"`
	Screener    ScreenerConfig     `yaml:"screener"`
	Stream      StreamConfig       `yaml:"stream"`
	Log         LogConfig          `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CacheConfig selects the response cache. An empty RedisAddr keeps the
// cache in process memory.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	Prefix        string `yaml:"prefix"`
}

// ScreenerConfig holds the criteria applied when a client sends none.
type ScreenerConfig struct {
	DefaultChains []string `yaml:"default_chains"`
	MinLiquidity  float64  `yaml:"min_liquidity"`
	MinVolume     float64  `yaml:"min_volume"`
	Category      string   `yaml:"category"`
}

// DefaultCriteria converts the configured defaults into filter criteria.
func (s ScreenerConfig) DefaultCriteria() pairs.Criteria {
	category, err := pairs.ParseCategory(s.Category)
	if err != nil {
		category = pairs.CategoryAll
	}
	return pairs.Criteria{
		Chains:       append([]string(nil), s.DefaultChains...),
		MinLiquidity: s.MinLiquidity,
		MinVolume:    s.MinVolume,
		Category:     category,
	}
}

// StreamConfig configures websocket sessions.
type StreamConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	PingInterval    time.Duration `yaml:"ping_interval"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    15 * time.Second,
			RequestTimeout: 25 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		DexScreener: dexscreener.DefaultConfig(),
		Series:      series.DefaultConfig(),
		Cache:       CacheConfig{Prefix: "pairscreen:"},
		Screener: ScreenerConfig{
			DefaultChains: append([]string(nil), pairs.DefaultChains...),
			MinLiquidity:  100_000,
			MinVolume:     0,
			Category:      string(pairs.CategoryAll),
		},
		Stream: StreamConfig{
			RefreshInterval: 30 * time.Second,
			PingInterval:    25 * time.Second,
			WriteTimeout:    10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "auto"},
	}
}

// Load reads .env (if present), then the YAML file at path over the
// defaults, then environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("SCREENER_HOST"); ok {
		c.Server.Host = v
	}
	if v, ok := lookup("SCREENER_PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SCREENER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		c.Cache.RedisAddr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		c.Cache.RedisPassword = v
	}
	if v, ok := lookup("DEXSCREENER_BASE_URL"); ok {
		c.DexScreener.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be within 1-65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request_timeout must be positive")
	}
	if c.DexScreener.BaseURL == "" {
		return fmt.Errorf("dexscreener base_url cannot be empty")
	}
	if err := c.DexScreener.Validate(); err != nil {
		return fmt.Errorf("dexscreener: %w", err)
	}
	if c.Series.StageTimeout <= 0 {
		return fmt.Errorf("series stage_timeout must be positive")
	}
	// Both series stages run inside one API request; the synthetic fallback
	// needs whatever time they leave.
	if c.Server.RequestTimeout <= 2*c.Series.StageTimeout {
		return fmt.Errorf("server request_timeout (%s) must exceed twice series stage_timeout (%s)",
			c.Server.RequestTimeout, c.Series.StageTimeout)
	}
	if c.Series.Window <= 0 {
		return fmt.Errorf("series window must be positive")
	}
	if c.Screener.MinLiquidity < 0 || c.Screener.MinVolume < 0 {
		return fmt.Errorf("screener minimums cannot be negative")
	}
	if _, err := pairs.ParseCategory(c.Screener.Category); err != nil {
		return fmt.Errorf("screener category: %w", err)
	}
	if c.Stream.RefreshInterval <= 0 {
		return fmt.Errorf("stream refresh_interval must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("log format must be auto, console or json, got %q", c.Log.Format)
	}
	return nil
}
