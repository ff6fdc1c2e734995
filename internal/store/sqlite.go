package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/bakeryimport/internal/core"
)

// SQLiteStore is a SQLite file destination.
type SQLiteStore struct {
	db   *sqlx.DB
	path string
}

// OpenSQLite opens or creates the database file at path.
// The parent directory must exist.
func OpenSQLite(ctx context.Context, path string, cfg Config) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", sqliteDSN(path, cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// sqlite3 opens lazily; ping so a bad path fails here.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func sqliteDSN(path string, cfg Config) string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprint(cfg.BusyTimeout.Milliseconds()))
	if cfg.ForeignKeys {
		q.Set("_foreign_keys", "1")
	} else {
		q.Set("_foreign_keys", "0")
	}
	return path + "?" + q.Encode()
}

// DB exposes the underlying handle.
func (s *SQLiteStore) DB() *sqlx.DB {
	return s.db
}

// CreateTables creates every table that does not exist yet, in one transaction.
func (s *SQLiteStore) CreateTables(ctx context.Context, defs []core.TableDefinition) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, def := range defs {
		if _, err := tx.ExecContext(ctx, core.CreateTableSQL(def, core.SQLite)); err != nil {
			return fmt.Errorf("create %s: %w", def.Info.Key, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of rows in def's table.
func (s *SQLiteStore) Count(ctx context.Context, def core.TableDefinition) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, core.CountSQL(def)); err != nil {
		return 0, fmt.Errorf("count %s: %w", def.Info.Key, err)
	}
	return n, nil
}

// Begin starts a load transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, stmts: make(map[string]*sqlx.Stmt)}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqliteTx prepares each table's upsert once and reuses it for every row.
type sqliteTx struct {
	tx    *sqlx.Tx
	stmts map[string]*sqlx.Stmt
}

func (t *sqliteTx) Upsert(ctx context.Context, def core.TableDefinition, values []any) error {
	stmt, ok := t.stmts[def.Info.Key]
	if !ok {
		var err error
		stmt, err = t.tx.PreparexContext(ctx, core.UpsertSQL(def, core.SQLite))
		if err != nil {
			return fmt.Errorf("prepare upsert %s: %w", def.Info.Key, err)
		}
		t.stmts[def.Info.Key] = stmt
	}
	_, err := stmt.ExecContext(ctx, values...)
	return err
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	t.closeStmts()
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback(ctx context.Context) error {
	t.closeStmts()
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (t *sqliteTx) closeStmts() {
	for key, stmt := range t.stmts {
		stmt.Close()
		delete(t.stmts, key)
	}
}
