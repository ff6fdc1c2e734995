package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// memStore is an in-memory Store keyed by the first column of each row.
type memStore struct {
	mu        sync.Mutex
	tables    map[string]map[string][]any
	created   []string
	failTable string // Upserts into this table fail...
	failRow   int    // ...starting at this zero-based row
	beginErr  error
	createErr error
	closed    bool
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string]map[string][]any), failRow: -1}
}

func (s *memStore) open(ctx context.Context, destination string) (Store, error) {
	return s, nil
}

func (s *memStore) CreateTables(ctx context.Context, defs []TableDefinition) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, def := range defs {
		s.created = append(s.created, def.Info.Key)
		if s.tables[def.Info.Key] == nil {
			s.tables[def.Info.Key] = make(map[string][]any)
		}
	}
	return nil
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &memTx{store: s, pending: make(map[string]map[string][]any), seen: make(map[string]int)}, nil
}

func (s *memStore) Count(ctx context.Context, def TableDefinition) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.tables[def.Info.Key])), nil
}

func (s *memStore) Close() error {
	s.closed = true
	return nil
}

func (s *memStore) rows(table string) map[string][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[table]
}

var errInjected = errors.New("constraint failed")

type memTx struct {
	store   *memStore
	pending map[string]map[string][]any
	seen    map[string]int
	done    bool
}

func (t *memTx) Upsert(ctx context.Context, def TableDefinition, values []any) error {
	key := def.Info.Key
	n := t.seen[key]
	t.seen[key]++
	if key == t.store.failTable && t.store.failRow >= 0 && n >= t.store.failRow {
		return errInjected
	}
	if t.pending[key] == nil {
		t.pending[key] = make(map[string][]any)
	}
	id, _ := values[0].(string)
	t.pending[key][id] = values
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for table, rows := range t.pending {
		if s.tables[table] == nil {
			s.tables[table] = make(map[string][]any)
		}
		for id, v := range rows {
			s.tables[table][id] = v
		}
	}
	t.done = true
	s.commits++
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	t.store.rollbacks++
	t.store.mu.Unlock()
	return nil
}

// recorder is a Reporter that keeps everything it receives.
type recorder struct {
	mu       sync.Mutex
	progress []int
	logs     []string
	levels   []slog.Level
}

func (r *recorder) Progress(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, percent)
}

func (r *recorder) Log(level slog.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, msg)
	r.levels = append(r.levels, level)
}
