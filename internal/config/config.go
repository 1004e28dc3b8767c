// Package config loads settings from an optional YAML file, an optional .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting of the tournament tool.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Lock     LockConfig     `yaml:"lock"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	LogLevel string         `yaml:"log_level"`
}

// DatabaseConfig selects and locates the store.
type DatabaseConfig struct {
	Driver      string        `yaml:"driver"`
	Path        string        `yaml:"path"`
	DSN         string        `yaml:"dsn"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
}

// LockConfig configures the round lock. An empty RedisURL selects the in-process lock.
type LockConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// MetricsConfig configures the Pushgateway. Empty disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
}

func defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:      DriverSQLite,
			Path:        "./data/tournament.db",
			ConnTimeout: 5 * time.Second,
		},
		Lock:     LockConfig{TTL: 30 * time.Second},
		LogLevel: "info",
	}
}

// Load builds the configuration. path may be empty; a missing file at path is
// not an error, any other read or parse failure is.
func Load(path string) (*Config, error) {
	// A missing .env file is fine outside local development.
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("DB_DRIVER")); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("DB_PATH")); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_CONN_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DB_CONN_TIMEOUT: %w", err)
		}
		cfg.Database.ConnTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Lock.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LOCK_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LOCK_TTL: %w", err)
		}
		cfg.Lock.TTL = d
	}
	if v := strings.TrimSpace(os.Getenv("PUSHGATEWAY_URL")); v != "" {
		cfg.Metrics.PushgatewayURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.ConnTimeout <= 0 {
		return fmt.Errorf("database connection timeout must be positive, got %v", c.Database.ConnTimeout)
	}
	if c.Lock.TTL <= 0 {
		return fmt.Errorf("lock ttl must be positive, got %v", c.Lock.TTL)
	}
	return nil
}
