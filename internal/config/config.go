package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the metrics service.
// Environment variables are parsed from the INNOMETRICS_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store driver: postgres, sqlite, or auto (postgres when a DSN is
	// present, sqlite otherwise).
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"innometrics.db"`

	// Token Configuration
	TokenSecret  string `envconfig:"TOKEN_SECRET" default:""`
	TokenTTLDays int    `envconfig:"TOKEN_TTL_DAYS" default:"30"`

	// Bulk submission: per-insert timeout bounding a stuck insert so a
	// batch can never hang indefinitely.
	BulkInsertTimeoutSeconds int `envconfig:"BULK_INSERT_TIMEOUT_SECONDS" default:"30"`

	// Health Configuration
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
}

// ResolveDefaults validates the driver selection and derives DBDriver
// when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET is required")
	}
	if c.TokenTTLDays <= 0 {
		return fmt.Errorf("TOKEN_TTL_DAYS must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: INNOMETRICS_HTTP_PORT, INNOMETRICS_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("INNOMETRICS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Int("token_ttl_days", cfg.TokenTTLDays).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	cfg := &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		DBDriver:                  "sqlite",
		SQLitePath:                ":memory:",
		TokenSecret:               "test-secret",
		TokenTTLDays:              30,
		BulkInsertTimeoutSeconds:  5,
		HealthProbeTimeoutSeconds: 5,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
