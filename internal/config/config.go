// Package config loads jobtrack settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Backend    string `env:"JOBTRACK_BACKEND" default:"sqlite"`
	DBPath     string `env:"JOBTRACK_DB"`
	StorageKey string `env:"JOBTRACK_KEY" default:"jobApplications"`
	RedisURL   string `env:"REDIS_URL"`
	Addr       string `env:"JOBTRACK_ADDR" default:":8080"`
	LogLevel   string `env:"LOG_LEVEL" default:"info"`
	LogFormat  string `env:"LOG_FORMAT" default:"text"`
}

// Load reads .env (if any) and the environment, filling in defaults. The
// result is not validated; call Validate once overrides are applied.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if cfg.DBPath == "" {
		home, _ := os.UserHomeDir()
		cfg.DBPath = filepath.Join(home, ".jobtrack", "jobtrack.db")
	}

	return &cfg, nil
}

// Validate checks the settings for consistency
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("JOBTRACK_DB is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown JOBTRACK_BACKEND %q (want sqlite, redis or memory)", c.Backend)
	}

	if c.StorageKey == "" {
		return fmt.Errorf("JOBTRACK_KEY must not be empty")
	}
	return nil
}
