// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from environment
// variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// DatabaseDSN points at the content backend. A plain path opens a
	// local SQLite file; a "user:pass@tcp(...)/db" DSN opens the hosted
	// MySQL backend.
	DatabaseDSN string `env:"STANZA_DB_DSN" envDefault:"./data/stanza.db"`
	ServerHost  string `env:"STANZA_SERVER_HOST" envDefault:"localhost"`
	ServerPort  int    `env:"STANZA_SERVER_PORT" envDefault:"8080"`
	Env         string `env:"STANZA_ENV" envDefault:"development"`
	LogLevel    string `env:"STANZA_LOG_LEVEL" envDefault:"info"`

	// Admin API token. Verification belongs to the upstream auth
	// service; the middleware only checks presence and equality when a
	// token is configured.
	AdminToken string `env:"STANZA_ADMIN_TOKEN"`

	// Cache configuration
	RedisURL     string `env:"STANZA_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"STANZA_CACHE_PREFIX" envDefault:"stanza:"` // Redis key prefix
	CacheTTL     int    `env:"STANZA_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"STANZA_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Media storage
	UploadsDir string `env:"STANZA_UPLOADS_DIR" envDefault:"./uploads"`
	PublicURL  string `env:"STANZA_PUBLIC_URL" envDefault:"http://localhost:8080"`

	// Scheduled backup exports
	BackupsDir  string `env:"STANZA_BACKUPS_DIR" envDefault:"./backups"`
	BackupCron  string `env:"STANZA_BACKUP_CRON" envDefault:"0 3 * * *"` // daily at 03:00
	DoBackups   bool   `env:"STANZA_DO_BACKUPS" envDefault:"false"`
	BackupsKeep int    `env:"STANZA_BACKUPS_KEEP" envDefault:"14"`

	// Rate limiting for the admin API
	RateLimitRPS   float64 `env:"STANZA_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"STANZA_RATE_LIMIT_BURST" envDefault:"40"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// UseMySQL reports whether the DSN targets the hosted MySQL backend
// rather than a local SQLite file.
func (c Config) UseMySQL() bool {
	return strings.Contains(c.DatabaseDSN, "@tcp(") || strings.HasPrefix(c.DatabaseDSN, "mysql://")
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("STANZA_RATE_LIMIT_RPS must be positive, got %v", cfg.RateLimitRPS)
	}

	return cfg, nil
}
