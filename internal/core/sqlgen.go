package core

import (
	"fmt"
	"strings"
)

// Dialect selects the SQL flavor generated for a destination.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// placeholder returns the bind marker for the 1-based parameter n.
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// columnType maps a declared column type to the dialect. SQLite keeps the
// declaration as written; PostgreSQL drops TEXT widths, which SQLite never
// enforced, and widens INTEGER and REAL to SQLite's 64-bit storage.
func (d Dialect) columnType(col Column) string {
	if d == SQLite {
		return col.Type
	}
	switch col.Kind() {
	case TextColumn:
		return "TEXT"
	case IntegerColumn:
		return "BIGINT"
	default:
		return "DOUBLE PRECISION"
	}
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdentifiers(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for def.
func CreateTableSQL(def TableDefinition, d Dialect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", quoteIdentifier(def.Info.Key))

	lines := make([]string, 0, len(def.Columns)+1+len(def.ForeignKeys))
	for _, col := range def.Columns {
		line := "    " + quoteIdentifier(col.Name) + " " + d.columnType(col)
		if col.NotNull {
			line += " NOT NULL"
		}
		if col.Default != "" && !def.IsKey(col.Name) {
			line += " DEFAULT " + col.Default
		}
		lines = append(lines, line)
	}
	if len(def.PrimaryKey) > 0 {
		lines = append(lines, "    PRIMARY KEY ("+quoteIdentifiers(def.PrimaryKey)+")")
	}
	for _, fk := range def.ForeignKeys {
		lines = append(lines, fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)",
			quoteIdentifier(fk.Column), quoteIdentifier(fk.RefTable), quoteIdentifier(fk.RefColumn)))
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

// UpsertSQL returns the parameterized insert-or-replace statement for def.
// Rows whose key already exists have every non-key column overwritten.
func UpsertSQL(def TableDefinition, d Dialect) string {
	marks := make([]string, len(def.Columns))
	for i := range marks {
		marks[i] = d.placeholder(i + 1)
	}
	return upsertSQL(def, strings.Join(marks, ", "))
}

// UpsertLiteralSQL returns the insert-or-replace statement for def with
// literals already rendered by LiteralRow.
func UpsertLiteralSQL(def TableDefinition, literals []string) string {
	return upsertSQL(def, strings.Join(literals, ", "))
}

func upsertSQL(def TableDefinition, values string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(def.Info.Key), quoteIdentifiers(def.ColumnNames()), values)

	if len(def.PrimaryKey) == 0 {
		return b.String()
	}

	var sets []string
	for _, col := range def.Columns {
		if def.IsKey(col.Name) {
			continue
		}
		q := quoteIdentifier(col.Name)
		sets = append(sets, q+" = excluded."+q)
	}

	fmt.Fprintf(&b, " ON CONFLICT (%s) ", quoteIdentifiers(def.PrimaryKey))
	if len(sets) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		b.WriteString("DO UPDATE SET " + strings.Join(sets, ", "))
	}
	return b.String()
}

// CountSQL returns a row count query for def.
func CountSQL(def TableDefinition) string {
	return "SELECT COUNT(*) FROM " + quoteIdentifier(def.Info.Key)
}
