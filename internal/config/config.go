// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Import   ImportConfig
	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ImportConfig holds import session settings.
type ImportConfig struct {
	// SourceDir is the folder holding the three CSV exports (optional; the
	// CLI flag or web form supplies it otherwise)
	SourceDir string `env:"IMPORT_SOURCE_DIR"`

	// Destination is a SQLite file path or a postgres:// URL (default: bakery.db)
	Destination string `env:"IMPORT_DESTINATION" envAlt:"DATABASE_URL" default:"bakery.db"`

	// StrictNumeric rejects malformed numbers in INTEGER and REAL columns (default: true)
	StrictNumeric bool `env:"IMPORT_STRICT_NUMERIC" default:"true"`

	// SessionRetention is how long a finished session stays queryable (default: 15m)
	SessionRetention time.Duration `env:"IMPORT_SESSION_RETENTION" default:"15m"`
}

// DatabaseConfig holds destination connection settings.
type DatabaseConfig struct {
	// MaxOpenConns is the SQLite connection pool size (default: 1)
	MaxOpenConns int `env:"DB_MAX_OPEN_CONNS" default:"1"`

	// BusyTimeout is how long SQLite waits on a locked database (default: 5s)
	BusyTimeout time.Duration `env:"DB_BUSY_TIMEOUT" default:"5s"`

	// ForeignKeys enables SQLite foreign key enforcement (default: false)
	ForeignKeys bool `env:"DB_FOREIGN_KEYS" default:"false"`

	// PGMaxConns is the PostgreSQL pool size (default: 4)
	PGMaxConns int `env:"DB_PG_MAX_CONNS" default:"4"`
}

// ServerConfig holds HTTP server settings for the web shell.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including the wait for a
	// running import (default: 5m)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"5m"`

	// TrustedProxies lists proxy CIDRs whose X-Real-IP and X-Forwarded-For
	// headers are believed (comma-separated, default: none)
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES"`
}

// SecurityConfig guards the import trigger. Anyone who can trigger an import
// chooses which folder the server reads and which database it writes.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on POST /api/import (default: false)
	RequireAPIKey bool `env:"SECURITY_REQUIRE_API_KEY" default:"false"`

	// APIKeys is the comma-separated list of accepted keys
	APIKeys []string `env:"SECURITY_API_KEYS"`
}

// RateLimitConfig holds rate limiting settings for the import trigger.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// ImportsPerMinute is the trigger rate per client IP (default: 6)
	ImportsPerMinute int `env:"RATE_LIMIT_IMPORTS_PER_MINUTE" default:"6"`

	// Burst is how many triggers may arrive at once (default: 2)
	Burst int `env:"RATE_LIMIT_BURST" default:"2"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
