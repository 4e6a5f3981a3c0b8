// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, providers) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/minhlq/setwave/pkg/query"
)

// # Configuration Schema

// Config holds all runtime configuration for the SetWave API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) — import progress records and trending caches
	RedisURL string `env:"REDIS_URL,required"`

	// External provider credentials
	TicketmasterAPIKey  string `env:"TICKETMASTER_API_KEY,required"`
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID,required"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET,required"`

	// MusicBrainzBaseURL allows pointing the identity registry at a mirror.
	MusicBrainzBaseURL string `env:"MUSICBRAINZ_BASE_URL" envDefault:"https://musicbrainz.org/ws/2"`

	// ResolverMinMatchScore is the acceptance threshold for fuzzy artist
	// matching against the identity registry, on the registry's own 0-100
	// scale. The registry does not document how the score is computed, so
	// the threshold is a tunable rather than a constant.
	ResolverMinMatchScore int `env:"RESOLVER_MIN_MATCH_SCORE" envDefault:"90"`

	// Ingestion cost/latency bounds
	IngestMaxPages    int `env:"INGEST_MAX_PAGES"    envDefault:"5"`
	IngestMaxAttempts int `env:"INGEST_MAX_ATTEMPTS" envDefault:"5"`

	// Trending engine defaults
	TrendingWeightVotes     float64       `env:"TRENDING_WEIGHT_VOTES"     envDefault:"2.0"`
	TrendingWeightAttendees float64       `env:"TRENDING_WEIGHT_ATTENDEES" envDefault:"1.5"`
	TrendingWeightRecency   float64       `env:"TRENDING_WEIGHT_RECENCY"   envDefault:"1.0"`
	TrendingRecompute       time.Duration `env:"TRENDING_RECOMPUTE_INTERVAL" envDefault:"30m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins from EXTRA_ORIGINS
// (comma-separated).
func (c *Config) AllowedOrigins() []string {
	return query.StringSlice(c.ExtraOrigins)
}
