package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LoadTable upserts rows into def's table inside a single transaction.
//
// Each row is reconciled to the table width, bound and upserted in order.
// The first failing row rolls the whole table back and is returned as a
// RowInsertFailure; earlier tables committed by the caller are unaffected.
// Progress moves linearly across def.Progress as rows are written.
// An empty row set writes nothing and opens no transaction.
func LoadTable(ctx context.Context, st Store, def TableDefinition, rows []Row, rep Reporter, strict bool) (TableResult, error) {
	table := def.Info.Key
	res := TableResult{Table: table}
	start := time.Now()

	if len(rows) == 0 {
		rep.Log(slog.LevelWarn, fmt.Sprintf("No rows in %s, %s left unchanged", def.Info.SourceFile, table))
		res.Skipped = true
		return res, nil
	}

	tx, err := st.Begin(ctx)
	if err != nil {
		return res, newImportError(UnexpectedFailure, table, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx) // no-op after commit

	lo, hi := def.Progress.From, def.Progress.To
	for i, row := range rows {
		rep.Progress(lo + (hi-lo)*i/len(rows))

		values, err := BindRow(row, def, strict)
		if err == nil {
			err = tx.Upsert(ctx, def, values)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			rep.Log(slog.LevelError, fmt.Sprintf("Failed to insert %s row %d, %s rolled back", table, i, table))
			return res, &ImportError{Kind: RowInsertFailure, Table: table, Row: i, Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, newImportError(UnexpectedFailure, table, fmt.Errorf("commit: %w", err))
	}
	rep.Progress(hi)

	res.Rows = len(rows)
	res.Duration = time.Since(start)
	if total, err := st.Count(ctx, def); err == nil {
		res.Total = total
	}
	rep.Log(slog.LevelInfo, fmt.Sprintf("Imported %d rows into %s (%d total)", res.Rows, table, res.Total))
	return res, nil
}
