package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/bakeryimport/internal/core"
)

// PostgresStore is a PostgreSQL destination.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database at url and verifies the connection.
func OpenPostgres(ctx context.Context, url string, cfg Config) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.PGMaxConns > 0 {
		poolConfig.MaxConns = cfg.PGMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Pool exposes the underlying pool.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// CreateTables creates every table that does not exist yet, in one transaction.
func (s *PostgresStore) CreateTables(ctx context.Context, defs []core.TableDefinition) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, def := range defs {
			if _, err := tx.Exec(ctx, core.CreateTableSQL(def, core.Postgres)); err != nil {
				return fmt.Errorf("create %s: %w", def.Info.Key, err)
			}
		}
		return nil
	})
}

// Count returns the number of rows in def's table.
func (s *PostgresStore) Count(ctx context.Context, def core.TableDefinition) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, core.CountSQL(def)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", def.Info.Key, err)
	}
	return n, nil
}

// Begin starts a load transaction.
func (s *PostgresStore) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &postgresTx{tx: tx}, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// postgresTx relies on pgx's statement cache to prepare each upsert once.
type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) Upsert(ctx context.Context, def core.TableDefinition, values []any) error {
	_, err := t.tx.Exec(ctx, core.UpsertSQL(def, core.Postgres), values...)
	return err
}

func (t *postgresTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
