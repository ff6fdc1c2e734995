package store

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/bakeryimport/internal/core"
)

func runImport(t *testing.T, cfg Config, src, dest string) (*core.Result, error) {
	t.Helper()
	im := core.NewImporter(Opener(cfg), true)
	return im.Run(context.Background(), core.Request{SourceDir: src, Destination: dest}, nopReporter{})
}

type nopReporter struct{}

func (nopReporter) Progress(int) {}
func (nopReporter) Log(slog.Level, string) {}

func openSQLite(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(context.Background(), path, DefaultConfig())
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLite_Import(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForeignKeys = true
	dest := filepath.Join(t.TempDir(), "bakery.db")
	src := fakeExports(25).write(t)

	res, err := runImport(t, cfg, src, dest)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if got := res.Rows(); got != 26+1+26 {
		t.Errorf("rows = %d, want 53", got)
	}

	st := openSQLite(t, dest)
	ctx := context.Background()

	var name string
	if err := st.DB().GetContext(ctx, &name, `SELECT "Name" FROM "Matlist" WHERE "MatItemNr" = '100000'`); err != nil {
		t.Fatal(err)
	}
	if name != "Käse" {
		t.Errorf("Name = %q, want Käse", name)
	}

	var price float64
	var priceType string
	if err := st.DB().QueryRowxContext(ctx, `SELECT "PriceKG", typeof("PriceKG") FROM "Matlist" WHERE "MatItemNr" = '100000'`).Scan(&price, &priceType); err != nil {
		t.Fatal(err)
	}
	if price != 7.9 || priceType != "real" {
		t.Errorf("PriceKG = %v (%s), want 7.9 real", price, priceType)
	}

	// Missing trailing fields take the column default.
	var barcode string
	var variante int64
	if err := st.DB().QueryRowxContext(ctx, `SELECT "Barcode", "Variante" FROM "Matlist" WHERE "MatItemNr" = '100000'`).Scan(&barcode, &variante); err != nil {
		t.Fatal(err)
	}
	if barcode != "" || variante != 1 {
		t.Errorf("defaults = %q, %d, want \"\" and 1", barcode, variante)
	}

	var runTime string
	if err := st.DB().GetContext(ctx, &runTime, `SELECT "RunTime" FROM "RecipeHead" WHERE "Nr" = 'R1'`); err != nil {
		t.Fatal(err)
	}
	if runTime != "00:45:00" {
		t.Errorf("RunTime = %q", runTime)
	}
}

func TestSQLite_ReimportReplaces(t *testing.T) {
	cfg := DefaultConfig()
	dest := filepath.Join(t.TempDir(), "bakery.db")
	exp := fakeExports(5)

	if _, err := runImport(t, cfg, exp.write(t), dest); err != nil {
		t.Fatal(err)
	}

	exp.recipeHead = "R1;Roggenbrot\r\n"
	res, err := runImport(t, cfg, exp.write(t), dest)
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range res.Tables {
		if tr.Table == "Matlist" && tr.Total != 6 {
			t.Errorf("Matlist total = %d after reimport, want 6", tr.Total)
		}
	}

	st := openSQLite(t, dest)
	var name, longName string
	if err := st.DB().QueryRowxContext(context.Background(), `SELECT "Name", "LongName" FROM "RecipeHead" WHERE "Nr" = 'R1'`).Scan(&name, &longName); err != nil {
		t.Fatal(err)
	}
	if name != "Roggenbrot" || longName != "" {
		t.Errorf("RecipeHead R1 = %q, %q, want replaced row", name, longName)
	}
}

func TestSQLite_RowFailureRollsBackTable(t *testing.T) {
	exp := fakeExports(3)
	exp.recipeLine += "R1;99;1;100001;0;0;zwei\r\n"
	dest := filepath.Join(t.TempDir(), "bakery.db")

	res, err := runImport(t, DefaultConfig(), exp.write(t), dest)

	var ie *core.ImportError
	if !errors.As(err, &ie) || ie.Kind != core.RowInsertFailure || ie.Table != "RecipeLine" || ie.Row != 4 {
		t.Fatalf("error = %v, want RowInsertFailure on RecipeLine row 4", err)
	}
	if len(res.Tables) != 2 {
		t.Errorf("committed tables = %d, want 2", len(res.Tables))
	}

	st := openSQLite(t, dest)
	for table, want := range map[string]int64{"Matlist": 4, "RecipeHead": 1, "RecipeLine": 0} {
		def, _ := core.Get(table)
		got, err := st.Count(context.Background(), def)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s count = %d, want %d", table, got, want)
		}
	}
}

func TestSQLite_ForeignKeyViolation(t *testing.T) {
	exp := fakeExports(2)
	exp.recipeLine += "R1;50;1;999999;0;0;1,0\r\n"
	cfg := DefaultConfig()
	cfg.ForeignKeys = true

	_, err := runImport(t, cfg, exp.write(t), filepath.Join(t.TempDir(), "bakery.db"))
	if core.KindOf(err) != core.RowInsertFailure {
		t.Fatalf("error = %v, want RowInsertFailure", err)
	}
	if code := core.MapError(err).Code; code != "DB002" {
		t.Errorf("code = %s, want DB002", code)
	}
}

func TestSQLite_OpenFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "bakery.db")

	_, err := runImport(t, DefaultConfig(), fakeExports(1).write(t), dest)
	if core.KindOf(err) != core.StoreOpenFailure {
		t.Fatalf("error = %v, want StoreOpenFailure", err)
	}
}

func TestSQLite_CreateTablesIdempotent(t *testing.T) {
	st := openSQLite(t, filepath.Join(t.TempDir(), "bakery.db"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := st.CreateTables(ctx, core.All()); err != nil {
			t.Fatalf("CreateTables() pass %d error: %v", i, err)
		}
	}
}

func TestSQLite_RollbackDiscards(t *testing.T) {
	st := openSQLite(t, filepath.Join(t.TempDir(), "bakery.db"))
	ctx := context.Background()
	def, _ := core.Get("Matlist")

	if err := st.CreateTables(ctx, core.All()); err != nil {
		t.Fatal(err)
	}
	tx, err := st.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	values, err := core.BindRow(core.Row{"200000", "Hefe"}, def, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Upsert(ctx, def, values); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatal(err)
	}
	// A second rollback is a no-op.
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("second Rollback() error: %v", err)
	}

	if n, _ := st.Count(ctx, def); n != 0 {
		t.Errorf("count = %d after rollback, want 0", n)
	}
}
