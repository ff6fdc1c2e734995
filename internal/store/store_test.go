package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	_ "github.com/JonMunkholm/bakeryimport/internal/core/tables"
)

func TestSQLiteDSN(t *testing.T) {
	cfg := DefaultConfig()
	if got := sqliteDSN("out.db", cfg); got != "out.db?_busy_timeout=5000&_foreign_keys=0" {
		t.Errorf("sqliteDSN() = %q", got)
	}
	cfg.ForeignKeys = true
	if got := sqliteDSN("out.db", cfg); !strings.Contains(got, "_foreign_keys=1") {
		t.Errorf("sqliteDSN() = %q, want foreign keys on", got)
	}
}

// exports holds the content of the three source files, Latin-1 encoded.
type exports struct {
	matlist, recipeHead, recipeLine string
}

// fakeExports generates n materials plus one with a Latin-1 name, a recipe
// head and one recipe line per material.
func fakeExports(n int) exports {
	f := gofakeit.New(42)
	decimal := func(v float64) string {
		return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
	}

	var mat, line strings.Builder
	mat.WriteString("100000;K\xe4se;0,02;0,02;1;2;0;7,90\r\n")
	line.WriteString("R1;0;1;100000;0;0;1,5\r\n")
	for i := 1; i <= n; i++ {
		nr := fmt.Sprintf("%06d", 100000+i)
		fmt.Fprintf(&mat, "%s;%s;%s;%s;%d\r\n", nr, f.Noun(), decimal(f.Float64Range(0, 1)),
			decimal(f.Float64Range(0, 1)), f.Number(0, 9))
		fmt.Fprintf(&line, "R1;%d;1;%s;0;%d;%s\r\n", i, nr, f.Number(1, 4), decimal(f.Float64Range(0.1, 25)))
	}

	return exports{
		matlist:    mat.String(),
		recipeHead: "R1;Bauernbrot;Bauernbrot hell;1,0;12,5;00:45:00\r\n",
		recipeLine: line.String(),
	}
}

func (e exports) write(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"Matlist.csv":    e.matlist,
		"Recipehead.csv": e.recipeHead,
		"Recipeline.csv": e.recipeLine,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
