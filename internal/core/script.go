package core

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// WriteScript renders an import of the exports in sourceDir as a SQLite
// script: the table DDL followed by one transaction of literal upserts per
// table. Running the script against an empty database yields the same rows
// as an import.
func WriteScript(w io.Writer, defs []TableDefinition, sourceDir string) error {
	paths, err := locateSources(sourceDir, defs)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- bakery import of %s, generated %s\n", sourceDir, time.Now().Format(time.RFC3339))

	for _, def := range defs {
		fmt.Fprintf(bw, "\n%s;\n", CreateTableSQL(def, SQLite))
	}

	for _, def := range defs {
		rows, err := ReadRows(paths[def.Info.Key])
		if err != nil {
			return newImportError(FileOpenFailure, def.Info.Key, fmt.Errorf("%s: %w", def.Info.SourceFile, err))
		}

		fmt.Fprintf(bw, "\n-- %s: %d rows from %s\n", def.Info.Key, len(rows), def.Info.SourceFile)
		if len(rows) == 0 {
			continue
		}
		bw.WriteString("BEGIN TRANSACTION;\n")
		for _, row := range rows {
			bw.WriteString(UpsertLiteralSQL(def, LiteralRow(row, def)))
			bw.WriteString(";\n")
		}
		bw.WriteString("COMMIT;\n")
	}

	return bw.Flush()
}
