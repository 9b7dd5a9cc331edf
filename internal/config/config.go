// Package config loads the server configuration from a YAML file with
// RINKDESK_ environment overrides.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"rinkdesk/internal/domain/calendar"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "RINKDESK"

// Defaults
const (
	DefaultListen               = "127.0.0.1:8080"
	DefaultEnv                  = "development"
	DefaultTimezone             = "UTC"
	DefaultFetchTimeout         = 10 * time.Second
	DefaultMaxConcurrentFetches = 8
	DefaultRateLimitPerSecond   = 20
	DefaultSlowRequestMs        = 200
	DefaultSlowUpstreamMs       = 300
	DefaultUpcomingDays         = 28
	DefaultLogLevel             = "info"
)

// MatchConfig holds the occurrence to weekly slot matching tolerances, in minutes.
type MatchConfig struct {
	NearExactMinutes     *int `yaml:"near_exact_minutes,omitempty" envconfig:"NEAR_EXACT_MINUTES"`
	OverlapBufferMinutes *int `yaml:"overlap_buffer_minutes,omitempty" envconfig:"OVERLAP_BUFFER_MINUTES"`
	StartOnlyMinutes     *int `yaml:"start_only_minutes,omitempty" envconfig:"START_ONLY_MINUTES"`
}

// Tolerances resolves unset values to the calendar defaults. Zero is a valid
// tolerance and is kept.
func (m MatchConfig) Tolerances() calendar.Tolerances {
	tol := calendar.DefaultTolerances()
	if m.NearExactMinutes != nil {
		tol.NearExactMinutes = max(*m.NearExactMinutes, 0)
	}
	if m.OverlapBufferMinutes != nil {
		tol.OverlapBufferMinutes = max(*m.OverlapBufferMinutes, 0)
	}
	if m.StartOnlyMinutes != nil {
		tol.StartOnlyMinutes = max(*m.StartOnlyMinutes, 0)
	}
	return tol
}

// Config is the top-level server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" envconfig:"LISTEN"`
	// Env is "development" or "production".
	Env string `yaml:"env" envconfig:"ENV"`

	// APIBaseURL is the root of the upstream REST API.
	APIBaseURL string `yaml:"api_base_url" envconfig:"API_BASE_URL"`
	// APIToken is sent upstream when a request carries no token of its own.
	APIToken string `yaml:"api_token,omitempty" envconfig:"API_TOKEN"`

	// Timezone is the IANA zone every date and clock is read in.
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE"`

	FetchTimeout         time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
	MaxConcurrentFetches int           `yaml:"max_concurrent_fetches" envconfig:"MAX_CONCURRENT_FETCHES"`
	Match                MatchConfig   `yaml:"tolerances,omitempty" envconfig:"TOLERANCES"`

	RateLimitPerSecond int `yaml:"rate_limit_per_second" envconfig:"RATE_LIMIT_PER_SECOND"`
	// CSRFKey is 64 hex characters; required in production.
	CSRFKey        string   `yaml:"csrf_key,omitempty" envconfig:"CSRF_KEY"`
	TrustedOrigins []string `yaml:"trusted_origins,omitempty" envconfig:"TRUSTED_ORIGINS"`

	SlowRequestMs  int    `yaml:"slow_request_ms" envconfig:"SLOW_REQUEST_MS"`
	SlowUpstreamMs int    `yaml:"slow_upstream_ms" envconfig:"SLOW_UPSTREAM_MS"`
	UpcomingDays   int    `yaml:"upcoming_days" envconfig:"UPCOMING_DAYS"`
	LogLevel       string `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:               DefaultListen,
		Env:                  DefaultEnv,
		Timezone:             DefaultTimezone,
		FetchTimeout:         DefaultFetchTimeout,
		MaxConcurrentFetches: DefaultMaxConcurrentFetches,
		RateLimitPerSecond:   DefaultRateLimitPerSecond,
		SlowRequestMs:        DefaultSlowRequestMs,
		SlowUpstreamMs:       DefaultSlowUpstreamMs,
		UpcomingDays:         DefaultUpcomingDays,
		LogLevel:             DefaultLogLevel,
	}
}

// Normalize fills missing or out-of-range values with defaults so partially
// filled files still behave.
func (c *Config) Normalize() {
	c.Listen = strings.TrimSpace(c.Listen)
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "production", "prod":
		c.Env = "production"
	default:
		c.Env = DefaultEnv
	}
	c.APIBaseURL = strings.TrimSpace(c.APIBaseURL)
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = DefaultTimezone
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MaxConcurrentFetches <= 0 {
		c.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}
	if c.RateLimitPerSecond <= 0 {
		c.RateLimitPerSecond = DefaultRateLimitPerSecond
	}
	if c.SlowRequestMs <= 0 {
		c.SlowRequestMs = DefaultSlowRequestMs
	}
	if c.SlowUpstreamMs <= 0 {
		c.SlowUpstreamMs = DefaultSlowUpstreamMs
	}
	if c.UpcomingDays <= 0 {
		c.UpcomingDays = DefaultUpcomingDays
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		c.LogLevel = DefaultLogLevel
	}
}

// Production reports whether the server runs in production mode.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Validate checks the settings that have no usable default.
// PRE: Normalize has been called
// POST: Returns nil, or the first problem found
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("api_base_url is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	key, err := c.CSRFKeyBytes()
	if err != nil {
		return err
	}
	if key == nil && c.Production() {
		return errors.New("csrf_key is required in production")
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CSRFKeyBytes decodes the hex CSRF key.
// POST: Returns (nil, nil) when no key is set, a 32-byte key, or an error
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	raw := strings.TrimSpace(c.CSRFKey)
	if raw == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil || len(key) != 32 {
		return nil, errors.New("csrf_key must be 64 hex characters")
	}
	return key, nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	return level, err
}

// Load reads the YAML file at path, applies environment overrides and
// normalizes the result. A missing file is created with the defaults.
// PRE: path is non-empty
// POST: Returns a normalized config; env values win over the file
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		slog.Info("config_created", "path", path)
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
// The parent directory is created with 0700 when missing.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rinkdesk-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
