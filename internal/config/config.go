// Package config handles application configuration loading from environment
// variables. It provides the Config struct used by the Content API and the
// SiteConfig struct used by the presentation site.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all Content API configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host      string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port      string `env:"APP_PORT" envDefault:"8080"`
	Env       string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`     // "text" or "json"

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"jobalert"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"jobalert"`

	// Valkey (Redis-compatible) holds idempotency keys.
	ValkeyHost     string `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`

	// S3-compatible object storage for post thumbnails. Uploads are
	// disabled when the endpoint or credentials are empty.
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET" envDefault:"thumbnails"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Comma-separated list of origins allowed by CORS.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Requests per second and burst allowed per client IP.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// SiteConfig holds the presentation site configuration.
type SiteConfig struct {
	Host      string `env:"SITE_HOST" envDefault:"0.0.0.0"`
	Port      string `env:"SITE_PORT" envDefault:"3000"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Base URL of the Content API, without a trailing slash.
	APIURL string `env:"API_URL" envDefault:"http://localhost:8080"`

	// Optional external course and mock-test catalog.
	CatalogAPIURL string `env:"CATALOG_API_URL"`

	SiteName string `env:"SITE_NAME" envDefault:"Haryana Job Alert"`
}

// Load reads the Content API configuration. A .env file in the working
// directory is applied first when present; real environment variables win.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// LoadSite reads the presentation site configuration.
func LoadSite() (*SiteConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &SiteConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StorageEnabled reports whether object storage credentials are present.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// Addr returns the site listen address (host:port).
func (c *SiteConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the site is running in development mode.
func (c *SiteConfig) IsDev() bool {
	return c.Env == "development"
}

// loadDotEnv applies a .env file if one exists. Variables already present
// in the process environment are not overwritten.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}
