package core

// format.go turns reconciled fields into destination values.
//
// Two forms exist:
//   - Literal renders a SQL literal and is used by the script export.
//   - BindValue produces a typed parameter (string, int64, float64) for the
//     bulk loader, so no field text is ever spliced into SQL it executes.
//
// Both substitute the column's default when a field is empty.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidNumeric is returned when strict binding meets a field that is
// not a number in an INTEGER or REAL column.
var ErrInvalidNumeric = errors.New("invalid numeric value")

// numericRegex validates that a string is a plain decimal number.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Literal renders field as a SQL literal for col.
// Empty fields yield the column default verbatim, text is single-quoted with
// embedded quotes doubled, and numeric fields are emitted unchanged.
func Literal(field string, col Column) string {
	if field == "" {
		return col.Default
	}
	if col.Kind() == TextColumn {
		return QuoteText(field)
	}
	return field
}

// QuoteText single-quotes s, doubling any quote it contains.
func QuoteText(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// BindValue converts field into a bound parameter for col.
// With strict set, a numeric column only accepts fields matching a decimal
// number; otherwise the raw string is handed to the destination unchanged.
func BindValue(field string, col Column, strict bool) (any, error) {
	if field == "" {
		return DefaultValue(col)
	}

	kind := col.Kind()
	if kind == TextColumn || !strict {
		return field, nil
	}

	v, err := parseNumeric(field, kind)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col.Name, err)
	}
	return v, nil
}

// DefaultValue parses the column's default literal into a bound parameter.
// "''" and other quoted literals become strings; NULL or a missing default
// become nil.
func DefaultValue(col Column) (any, error) {
	lit := strings.TrimSpace(col.Default)
	if lit == "" || strings.EqualFold(lit, "NULL") {
		return nil, nil
	}
	if len(lit) >= 2 && lit[0] == '\'' && lit[len(lit)-1] == '\'' {
		return strings.ReplaceAll(lit[1:len(lit)-1], "''", "'"), nil
	}

	kind := col.Kind()
	if kind == TextColumn {
		return lit, nil
	}
	v, err := parseNumeric(lit, kind)
	if err != nil {
		return nil, fmt.Errorf("column %s: default %s: %w", col.Name, col.Default, err)
	}
	return v, nil
}

// BindRow reconciles row to the table's width and binds every field.
func BindRow(row Row, def TableDefinition, strict bool) ([]any, error) {
	fields := Reconcile(row, len(def.Columns))
	values := make([]any, len(fields))
	for i, field := range fields {
		v, err := BindValue(field, def.Columns[i], strict)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// LiteralRow reconciles row to the table's width and renders every field.
func LiteralRow(row Row, def TableDefinition) []string {
	fields := Reconcile(row, len(def.Columns))
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = Literal(field, def.Columns[i])
	}
	return out
}

func parseNumeric(s string, kind ColumnKind) (any, error) {
	if !numericRegex.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumeric, s)
	}

	if kind == IntegerColumn {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		// Accept integral decimals such as "1.0" or "2e3".
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidNumeric, s)
		}
		return int64(f), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumeric, s)
	}
	return f, nil
}
