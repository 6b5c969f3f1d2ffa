// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present so developers do not need to export every variable.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, S3) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Drivers

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// # Configuration Schema

// Config holds all runtime configuration for the LinguaPhoto API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	HomepageURL string `env:"HOMEPAGE_URL" envDefault:"http://localhost:3000"`

	// Document store ("postgres" or "memory")
	DocstoreDriver string `env:"DOCSTORE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`

	// MigrationPath overrides the embedded SQL migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Key-Value store backing the translation queue and in-flight markers.
	QueueDriver string `env:"QUEUE_DRIVER" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	// Cryptographic keys for identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Object Storage (S3-compatible, "s3" or "memory")
	ObjectStoreDriver string        `env:"OBJECTSTORE_DRIVER" envDefault:"s3"`
	S3Bucket          string        `env:"S3_BUCKET"          envDefault:"linguaphoto"`
	S3Region          string        `env:"S3_REGION"          envDefault:"us-east-1"`
	S3Endpoint        string        `env:"S3_ENDPOINT"`
	S3AccessKeyID     string        `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string        `env:"S3_SECRET_ACCESS_KEY"`
	SignedURLTTL      time.Duration `env:"SIGNED_URL_TTL"     envDefault:"2400h"`

	// ObjectStoreBaseURL is where the memory driver's objects are served from.
	ObjectStoreBaseURL string `env:"OBJECTSTORE_BASE_URL" envDefault:"http://localhost:8080/objects"`

	// CDN (CloudFront) signed URLs. All three must be set to enable signing through the CDN.
	CDNBaseURL        string `env:"CDN_BASE_URL"`
	CDNKeyPairID      string `env:"CDN_KEY_PAIR_ID"`
	CDNPrivateKeyPath string `env:"CDN_PRIVATE_KEY_PATH"`

	// Upstream AI services
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	SpeechVoice   string `env:"SPEECH_VOICE" envDefault:"nova"`

	// Translation worker pool
	TranslationWorkers     int           `env:"TRANSLATION_WORKERS"      envDefault:"4"`
	TranslationMaxAttempts int           `env:"TRANSLATION_MAX_ATTEMPTS" envDefault:"1"`
	TranslationJobTimeout  time.Duration `env:"TRANSLATION_JOB_TIMEOUT"  envDefault:"0s"`

	// Upload limits
	ImageMaxBytes  int64 `env:"IMAGE_MAX_BYTES"  envDefault:"26214400"`
	ImageMaxWidth  int   `env:"IMAGE_MAX_WIDTH"  envDefault:"4096"`
	ImageMaxHeight int   `env:"IMAGE_MAX_HEIGHT" envDefault:"4096"`

	// Billing (Stripe)
	StripeAPIKey  string `env:"STRIPE_API_KEY"`
	StripePriceID string `env:"STRIPE_PRODUCT_PRICE_ID" envDefault:"price_1Q0ZaMKeTo38dsfeSWRDGCEf"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment into a [Config] and validates driver combinations.
func Parse() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DocstoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres docstore")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown DOCSTORE_DRIVER %q", c.DocstoreDriver)
	}

	switch c.QueueDriver {
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL is required for the redis queue")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown QUEUE_DRIVER %q", c.QueueDriver)
	}

	switch c.ObjectStoreDriver {
	case DriverS3, DriverMemory:
	default:
		return fmt.Errorf("config: unknown OBJECTSTORE_DRIVER %q", c.ObjectStoreDriver)
	}

	if c.TranslationWorkers < 1 {
		return errors.New("config: TRANSLATION_WORKERS must be at least 1")
	}

	if c.TranslationMaxAttempts < 1 {
		return errors.New("config: TRANSLATION_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// CDNEnabled reports whether signed URLs should be issued through the CDN.
func (c *Config) CDNEnabled() bool {
	return c.CDNBaseURL != "" && c.CDNKeyPairID != "" && c.CDNPrivateKeyPath != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins lists the origins the CORS middleware accepts outside development.
func (c *Config) AllowedOrigins() []string {
	return []string{c.HomepageURL, "http://127.0.0.1:3000", "http://localhost:3000"}
}
