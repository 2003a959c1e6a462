// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

// Package config provides centralized configuration for all Swipelab
// components, loaded via Koanf v2 with layered sources.
//
// Configuration Loading Order (highest priority wins):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds the embedded DuckDB settings.
//
// Environment Variables:
//   - DATABASE_PATH: Database file path (default: /data/swipelab.duckdb)
//   - DATABASE_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DATABASE_THREADS: Worker threads, 0 = runtime.NumCPU()
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - SERVER_HOST, SERVER_PORT: Listen address (default: 0.0.0.0:8420)
//   - SERVER_TIMEOUT: Read/write timeout (default: 30s)
//   - SERVER_SHUTDOWN_TIMEOUT: Graceful shutdown window (default: 10s)
//   - ENVIRONMENT: "development" or "production"
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// APIConfig holds pagination and response limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and rate limiting settings.
//
// JWTSecret must be at least 32 characters in production. Rate limits are
// requests per window, enforced per client IP. Login gets its own, much
// stricter limit for brute-force prevention. The public feed endpoint uses
// the permissive feed limit so a classroom of participants behind one NAT
// does not starve.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	LoginRateLimit    int           `koanf:"login_rate_limit"`
	LoginRateWindow   time.Duration `koanf:"login_rate_window"`
	FeedRateLimit     int           `koanf:"feed_rate_limit"`
	FeedRateWindow    time.Duration `koanf:"feed_rate_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port listen address for the HTTP server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether the server runs in production mode.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}
