// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be 'development' or 'production', got %q", c.Server.Environment)
	}
}

// validateSecurity validates authentication and rate limiting settings.
// The JWT secret is mandatory in production; in development an empty secret
// is rejected too, because researcher sessions cannot be issued without it.
func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Server.IsProduction() && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production (got %d)", len(c.Security.JWTSecret))
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQS must be positive when rate limiting is enabled")
		}
		if c.Security.LoginRateLimit <= 0 {
			return fmt.Errorf("LOGIN_RATE_LIMIT must be positive when rate limiting is enabled")
		}
		if c.Security.FeedRateLimit <= 0 {
			return fmt.Errorf("FEED_RATE_LIMIT must be positive when rate limiting is enabled")
		}
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ORIGINS entry %q must be '*' or an http(s) URL", origin)
		}
	}
	if c.Security.BcryptCost != 0 && (c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31) {
		return fmt.Errorf("BCRYPT_COST must be 0 (default) or between 4 and 31, got %d", c.Security.BcryptCost)
	}
	return nil
}

// validateAPI validates pagination limits
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize <= 0 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be positive")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be >= API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

// validateLogging validates log output settings
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
}
