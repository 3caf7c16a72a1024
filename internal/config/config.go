// Package config provides environment-driven configuration for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults
const (
	DefaultPort                = 8080
	DefaultCacheTTLSeconds     = 3600
	DefaultPollIntervalMillis  = 1500
	DefaultMaxConcurrentPhases = 4
)

// Config holds runtime configuration for the server and CLI.
type Config struct {
	DatabaseURL         string
	Port                int
	CacheTTL            time.Duration
	PollInterval        time.Duration
	MaxConcurrentPhases int
}

// Load reads configuration from environment variables. DATABASE_URL is
// required; everything else has a default.
func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	port, err := intEnv("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	ttlSeconds, err := intEnv("STATUS_CACHE_TTL_SECONDS", DefaultCacheTTLSeconds)
	if err != nil {
		return nil, err
	}
	pollMillis, err := intEnv("STREAM_POLL_INTERVAL_MS", DefaultPollIntervalMillis)
	if err != nil {
		return nil, err
	}
	maxPhases, err := intEnv("MAX_CONCURRENT_PHASES", DefaultMaxConcurrentPhases)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:         databaseURL,
		Port:                port,
		CacheTTL:            time.Duration(ttlSeconds) * time.Second,
		PollInterval:        time.Duration(pollMillis) * time.Millisecond,
		MaxConcurrentPhases: maxPhases,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got: %d", c.Port)
	}
	if c.CacheTTL < time.Second {
		return fmt.Errorf("STATUS_CACHE_TTL_SECONDS must be at least 1 second")
	}
	if c.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("STREAM_POLL_INTERVAL_MS must be at least 100ms")
	}
	if c.MaxConcurrentPhases < 1 {
		return fmt.Errorf("MAX_CONCURRENT_PHASES must be at least 1, got: %d", c.MaxConcurrentPhases)
	}
	return nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return value, nil
}
