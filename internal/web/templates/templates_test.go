package templates

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

var errShortWrite = errors.New("connection closed")

// limitWriter accepts n bytes and then fails.
type limitWriter struct {
	n int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		written := w.n
		w.n = 0
		return written, errShortWrite
	}
	w.n -= len(p)
	return len(p), nil
}

func testPage() PageData {
	return PageData{
		SourceDir:   `C:\Export <neu>`,
		Destination: "bakery.db",
		NeedsAPIKey: true,
		Tables: []TableRow{
			{Name: "Matlist", Label: "Materials", Source: "Matlist.csv", Columns: 19},
			{Name: "RecipeLine", Label: "Recipe lines", Source: "Recipeline.csv", Columns: 29},
		},
	}
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	if err := Page(testPage()).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`value="C:\Export &lt;neu&gt;"`,
		`name="apiKey"`,
		`<span id="percent">0%</span>`,
		"<td>Matlist <small>Materials</small></td><td>Matlist.csv</td><td>19</td>",
		"</html>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPage_WriteErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := Page(testPage()).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	size := buf.Len()

	tests := []struct {
		name  string
		limit int
	}{
		{"head", 0},
		{"form", len(pageHead) + 10},
		{"table", strings.Index(buf.String(), "<table>") + 5},
		{"script", size - 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Page(testPage()).Render(context.Background(), &limitWriter{n: tt.limit})
			if !errors.Is(err, errShortWrite) {
				t.Errorf("Render() error = %v, want %v", err, errShortWrite)
			}
		})
	}
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Import <failed>", "Retry", "IMP006").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Import &lt;failed&gt;") || !strings.Contains(buf.String(), "(Code: IMP006)") {
		t.Errorf("alert = %q", buf.String())
	}
}
