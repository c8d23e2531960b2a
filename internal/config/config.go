// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package config loads and validates TowerAtlas configuration using Koanf v2
// with layered sources: built-in defaults, an optional YAML config file, and
// environment variables (highest priority).
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Access   AccessConfig   `koanf:"access"`
	Audit    AuditConfig    `koanf:"audit"`
	Notify   NotifyConfig   `koanf:"notify"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path. ":memory:" opens an in-memory store.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB worker thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
	// MaxOpenConns caps pooled connections to the embedded engine.
	MaxOpenConns int `koanf:"max_open_conns"`
	// QueryTimeout bounds every read query so a pathological bbox cannot
	// stall a request worker indefinitely.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// SecurityConfig holds authentication and rate limit settings.
type SecurityConfig struct {
	// AuthMode is "jwt" or "none". "none" is for development only.
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// AccessConfig holds temporary grant lifecycle settings.
type AccessConfig struct {
	// SweepInterval is how often expired grants are reconciled with the
	// materialized assignment table.
	SweepInterval time.Duration `koanf:"sweep_interval"`
	// ExpiryWarnInterval is how often the expiry-warning pass runs.
	ExpiryWarnInterval time.Duration `koanf:"expiry_warn_interval"`
	// ExpiryWarnAfter / ExpiryWarnBefore bound the expiring-soon window
	// relative to now. Defaults: 23h and 25h.
	ExpiryWarnAfter  time.Duration `koanf:"expiry_warn_after"`
	ExpiryWarnBefore time.Duration `koanf:"expiry_warn_before"`
	// NotifyDedupWindow suppresses repeat expiry warnings for a grant.
	NotifyDedupWindow time.Duration `koanf:"notify_dedup_window"`
}

// AuditConfig holds audit recorder settings.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`
	// BufferSize is the async write buffer capacity. Recording is
	// fire-and-forget; a full buffer drops the event with a log line
	// rather than blocking the triggering operation.
	BufferSize    int `koanf:"buffer_size"`
	RetentionDays int `koanf:"retention_days"`
}

// NotifyConfig holds notification sink settings.
type NotifyConfig struct {
	// WebhookURL forwards notifications to an external endpoint when set.
	WebhookURL string `koanf:"webhook_url"`
	// RatePerSecond bounds notification fan-out.
	RatePerSecond float64       `koanf:"rate_per_second"`
	Burst         int           `koanf:"burst"`
	Timeout       time.Duration `koanf:"timeout"`
}

// APIConfig holds API paging settings for list endpoints outside the
// viewport path (audit listing). Viewport caps are zoom-derived constants.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all sensible default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        4326, // EPSG:4326, the WGS84 coordinate system
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:         "/data/toweratlas.duckdb",
			MaxMemory:    "2GB",
			Threads:      0,
			MaxOpenConns: 4,
			QueryTimeout: 15 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			JWTSecret:       "",
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Access: AccessConfig{
			SweepInterval:      5 * time.Minute,
			ExpiryWarnInterval: time.Hour,
			ExpiryWarnAfter:    23 * time.Hour,
			ExpiryWarnBefore:   25 * time.Hour,
			NotifyDedupWindow:  48 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:       true,
			BufferSize:    1000,
			RetentionDays: 90,
		},
		Notify: NotifyConfig{
			WebhookURL:    "",
			RatePerSecond: 10,
			Burst:         20,
			Timeout:       10 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
