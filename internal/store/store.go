// Package store implements the import destinations: a SQLite file for plain
// paths and PostgreSQL for postgres:// URLs.
package store

import (
	"context"
	"time"

	"github.com/JonMunkholm/bakeryimport/internal/core"
)

// Config holds destination connection settings.
type Config struct {
	MaxOpenConns int           // SQLite connection pool size
	BusyTimeout  time.Duration // SQLite wait on a locked database
	ForeignKeys  bool          // Enforce SQLite foreign keys
	PGMaxConns   int32         // PostgreSQL pool size
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns: 1,
		BusyTimeout:  5 * time.Second,
		ForeignKeys:  false,
		PGMaxConns:   4,
	}
}

// Open opens destination with cfg, choosing the backend from its form.
func Open(ctx context.Context, destination string, cfg Config) (core.Store, error) {
	if core.IsPostgresURL(destination) {
		return OpenPostgres(ctx, destination, cfg)
	}
	return OpenSQLite(ctx, destination, cfg)
}

// Opener binds cfg into a core.OpenFunc for the importer.
func Opener(cfg Config) core.OpenFunc {
	return func(ctx context.Context, destination string) (core.Store, error) {
		return Open(ctx, destination, cfg)
	}
}
