package core

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// ColumnKind classifies how a column's values are formatted and bound.
type ColumnKind int

const (
	TextColumn ColumnKind = iota
	IntegerColumn
	RealColumn
)

func (k ColumnKind) String() string {
	switch k {
	case TextColumn:
		return "text"
	case IntegerColumn:
		return "integer"
	case RealColumn:
		return "real"
	default:
		return "unknown"
	}
}

// Column describes one positional CSV field and the destination column it lands in.
type Column struct {
	Name    string // Destination column name, also the field's position label
	Type    string // Declared SQL type: "TEXT(6)", "INTEGER", "REAL"
	Default string // Destination literal used for empty fields: "''", "0.01", "-1"
	NotNull bool
}

// Kind derives the column kind from its declared SQL type.
func (c Column) Kind() ColumnKind {
	t := strings.ToUpper(strings.TrimSpace(c.Type))
	switch {
	case strings.HasPrefix(t, "TEXT"), strings.HasPrefix(t, "VARCHAR"), strings.HasPrefix(t, "CHAR"):
		return TextColumn
	case strings.HasPrefix(t, "INT"):
		return IntegerColumn
	default:
		return RealColumn
	}
}

// ForeignKey links a column to a column in another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// ProgressRange is the slice of the overall 0-100 progress scale a table's
// load occupies.
type ProgressRange struct {
	From int
	To   int
}

// TableInfo contains display information about a table.
type TableInfo struct {
	Key        string // Destination table name: "Matlist"
	Label      string // Display name: "Materials"
	SourceFile string // File name inside the source folder: "Matlist.csv"
	Order      int    // Load order; referenced tables load first
}

// TableDefinition contains everything needed to create, format and load a table.
type TableDefinition struct {
	Info        TableInfo
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
	Progress    ProgressRange
}

// ColumnNames returns the destination column names in positional order.
func (t TableDefinition) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsKey reports whether name is part of the table's primary key.
func (t TableDefinition) IsKey(name string) bool {
	for _, k := range t.PrimaryKey {
		if k == name {
			return true
		}
	}
	return false
}

// Row is one tokenized CSV line: positional, untyped fields.
type Row []string

// Store is an import destination.
// Satisfied by the SQLite and PostgreSQL stores in internal/store.
type Store interface {
	CreateTables(ctx context.Context, defs []TableDefinition) error
	Begin(ctx context.Context) (Tx, error)
	Count(ctx context.Context, def TableDefinition) (int64, error)
	Close() error
}

// Tx is one per-table load transaction.
type Tx interface {
	Upsert(ctx context.Context, def TableDefinition, values []any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// OpenFunc opens the destination named by a path or URL.
type OpenFunc func(ctx context.Context, destination string) (Store, error)

// Reporter receives progress and log output from a running import.
type Reporter interface {
	Progress(percent int)
	Log(level slog.Level, msg string)
}

// SessionPhase indicates the current stage of an import session.
type SessionPhase string

const (
	PhaseRunning  SessionPhase = "running"
	PhaseComplete SessionPhase = "complete"
	PhaseFailed   SessionPhase = "failed"
)

// EventType distinguishes the events published by a session.
type EventType string

const (
	EventProgress EventType = "progress"
	EventLog      EventType = "log"
	EventDone     EventType = "done"
)

// Event is one message on a session's event stream.
type Event struct {
	// Seq is the event's position in the session history, starting at 0.
	// Listeners that miss events still see the original positions.
	Seq     int       `json:"seq"`
	Type    EventType `json:"type"`
	Time    time.Time `json:"time"`
	Percent int       `json:"percent,omitempty"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
	Result  *Result   `json:"result,omitempty"`
}

// TableResult summarizes the load of one table.
type TableResult struct {
	Table    string        `json:"table"`
	Rows     int           `json:"rows"`
	Total    int64         `json:"total"`
	Skipped  bool          `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result contains the final outcome of an import session.
type Result struct {
	SessionID   string        `json:"sessionId"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Phase       SessionPhase  `json:"phase"`
	Tables      []TableResult `json:"tables"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"` // Non-empty if Phase is PhaseFailed
	Code        string        `json:"code,omitempty"`
}

// Succeeded reports whether the import completed.
func (r *Result) Succeeded() bool {
	return r != nil && r.Phase == PhaseComplete
}

// Rows returns the total number of rows loaded across all tables.
func (r *Result) Rows() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}
