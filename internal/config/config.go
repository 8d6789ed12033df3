// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

// Package config provides layered configuration loading for Menucast.
//
// Configuration is loaded via Koanf v2 with the following precedence
// (highest wins):
//  1. Environment variables
//  2. Optional YAML config file (CONFIG_PATH or well-known locations)
//  3. Built-in defaults
package config

import "time"

// MinSyncInterval is the floor for the background sync interval.
// Configured values below this are clamped on load.
const MinSyncInterval = 5 * time.Minute

// Config is the root configuration structure for Menucast.
type Config struct {
	Catalog  CatalogConfig  `koanf:"catalog"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Cache    CacheConfig    `koanf:"cache"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// CatalogConfig configures the external point-of-sale catalog source.
type CatalogConfig struct {
	URL            string        `koanf:"url"`              // Base URL of the catalog API
	Token          string        `koanf:"token"`            // Bearer token for catalog requests
	PageSize       int           `koanf:"page_size"`        // Items fetched per sync (single bounded page)
	RequestTimeout time.Duration `koanf:"request_timeout"`  // Per-request timeout on catalog calls
	RateLimitRPS   float64       `koanf:"rate_limit_rps"`   // Outbound requests per second to the source
	RateLimitBurst int           `koanf:"rate_limit_burst"` // Outbound burst allowance
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`       // Database file path, or ":memory:" for tests
	MaxMemory string `koanf:"max_memory"` // DuckDB max_memory setting (e.g. "1GB")
	Threads   int    `koanf:"threads"`    // 0 = use runtime.NumCPU()
}

// SyncConfig configures the background catalog synchronization.
type SyncConfig struct {
	Enabled     bool          `koanf:"enabled"`      // Master toggle for the background scheduler
	Interval    time.Duration `koanf:"interval"`     // Interval between scheduled syncs (floor: MinSyncInterval)
	WarmupDelay time.Duration `koanf:"warmup_delay"` // Delay before the first scheduled sync after start
}

// CacheConfig configures public menu response caching.
type CacheConfig struct {
	MenuMaxAge               time.Duration `koanf:"menu_max_age"`                // Cache-Control max-age on the public menu
	MenuStaleWhileRevalidate time.Duration `koanf:"menu_stale_while_revalidate"` // stale-while-revalidate window
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// SecurityConfig configures CORS and inbound rate limiting.
// Rate-limit counters are per-process in-memory state; this is only
// correct under the single-writer deployment this service assumes.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"` // Default per-IP budget per window
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			URL:            "",
			Token:          "",
			PageSize:       500,
			RequestTimeout: 30 * time.Second,
			RateLimitRPS:   5,
			RateLimitBurst: 5,
		},
		Database: DatabaseConfig{
			Path:      "/data/menucast.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Sync: SyncConfig{
			Enabled:     true,
			Interval:    15 * time.Minute,
			WarmupDelay: 10 * time.Second,
		},
		Cache: CacheConfig{
			MenuMaxAge:               5 * time.Minute,
			MenuStaleWhileRevalidate: 10 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8484,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
