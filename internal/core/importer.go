package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultDestination is the SQLite file written when no destination is given.
const DefaultDestination = "bakery.db"

// Request names the inputs of one import.
type Request struct {
	SourceDir   string `json:"sourceDir"`
	Destination string `json:"destination"`
}

// Normalize trims the request and applies the default destination.
// Returns an InputMissing error when no source folder is set.
func (r Request) Normalize() (Request, error) {
	r.SourceDir = strings.TrimSpace(r.SourceDir)
	r.Destination = strings.TrimSpace(r.Destination)
	if r.SourceDir == "" {
		return r, newImportError(InputMissing, "", errors.New("source folder is required"))
	}
	if r.Destination == "" {
		r.Destination = DefaultDestination
	}
	return r, nil
}

// IsPostgresURL reports whether destination names a PostgreSQL database
// rather than a SQLite file.
func IsPostgresURL(destination string) bool {
	d := strings.ToLower(strings.TrimSpace(destination))
	return strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://")
}

// RedactDestination hides the password of a PostgreSQL URL for display.
func RedactDestination(destination string) string {
	if !IsPostgresURL(destination) {
		return destination
	}
	scheme, rest, _ := strings.Cut(destination, "://")
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return destination
	}
	user, _, hasPass := strings.Cut(rest[:at], ":")
	if !hasPass {
		return destination
	}
	return scheme + "://" + user + ":***" + rest[at:]
}

// Importer runs the full pipeline: locate the three exports, open the
// destination, create the tables and load each table in order.
type Importer struct {
	Open          OpenFunc
	Tables        []TableDefinition // load order; referenced tables first
	StrictNumeric bool
}

// NewImporter creates an importer over the registered tables.
func NewImporter(open OpenFunc, strict bool) *Importer {
	return &Importer{Open: open, Tables: All(), StrictNumeric: strict}
}

// Run executes one import. The returned Result is never nil; on failure it
// holds the tables committed before the error.
func (im *Importer) Run(ctx context.Context, req Request, rep Reporter) (res *Result, err error) {
	res = &Result{Source: req.SourceDir, Destination: req.Destination, StartedAt: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			err = newImportError(UnexpectedFailure, "", fmt.Errorf("panic: %v", r))
		}
		res.Duration = time.Since(res.StartedAt)
		if err != nil {
			res.Phase = PhaseFailed
			res.Error = err.Error()
			res.Code = MapError(err).Code
			rep.Log(slog.LevelError, err.Error())
			rep.Log(slog.LevelError, FormatUserError(err))
			return
		}
		res.Phase = PhaseComplete
	}()

	rep.Progress(0)
	rep.Log(slog.LevelInfo, "Starting import")

	req, err = req.Normalize()
	if err != nil {
		return res, err
	}
	res.Source, res.Destination = req.SourceDir, req.Destination

	paths, err := locateSources(req.SourceDir, im.Tables)
	if err != nil {
		return res, err
	}
	rep.Log(slog.LevelInfo, "All source files found")
	rep.Progress(5)

	st, err := im.Open(ctx, req.Destination)
	if err != nil {
		return res, newImportError(StoreOpenFailure, "", err)
	}
	defer st.Close()
	rep.Log(slog.LevelInfo, "Opened destination "+RedactDestination(req.Destination))
	rep.Progress(10)

	if err := st.CreateTables(ctx, im.Tables); err != nil {
		return res, newImportError(SchemaCreationFailure, "", err)
	}

	for _, def := range im.Tables {
		rep.Log(slog.LevelInfo, fmt.Sprintf("Reading %s", def.Info.SourceFile))
		rows, err := ReadRows(paths[def.Info.Key])
		if err != nil {
			return res, newImportError(FileOpenFailure, def.Info.Key, fmt.Errorf("%s: %w", def.Info.SourceFile, err))
		}
		rep.Log(slog.LevelInfo, fmt.Sprintf("Read %d rows from %s", len(rows), def.Info.SourceFile))

		tr, err := LoadTable(ctx, st, def, rows, rep, im.StrictNumeric)
		if err != nil {
			return res, err
		}
		res.Tables = append(res.Tables, tr)
	}

	rep.Progress(100)
	rep.Log(slog.LevelInfo, "Import completed successfully")
	rep.Log(slog.LevelInfo, "Database saved to "+RedactDestination(req.Destination))
	return res, nil
}

// locateSources resolves every table's source file inside dir. All missing
// files are reported together.
func locateSources(dir string, defs []TableDefinition) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newImportError(SourceFileNotFound, "", fmt.Errorf("source folder %s: %w", dir, err))
	}

	paths := make(map[string]string, len(defs))
	var missing []string
	for _, def := range defs {
		name, ok := findFile(entries, def.Info.SourceFile)
		if !ok {
			missing = append(missing, def.Info.SourceFile)
			continue
		}
		paths[def.Info.Key] = filepath.Join(dir, name)
	}

	if len(missing) > 0 {
		return nil, newImportError(SourceFileNotFound, "",
			fmt.Errorf("missing %s in %s", strings.Join(missing, ", "), dir))
	}
	return paths, nil
}

// findFile matches name against the folder listing, preferring an exact
// match and falling back to a case-insensitive one.
func findFile(entries []os.DirEntry, name string) (string, bool) {
	fallback := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if e.Name() == name {
			return name, true
		}
		if fallback == "" && strings.EqualFold(e.Name(), name) {
			fallback = e.Name()
		}
	}
	return fallback, fallback != ""
}
