package core

import (
	"reflect"
	"testing"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		n    int
		want Row
	}{
		{"exact width", Row{"a", "b", "c"}, 3, Row{"a", "b", "c"}},
		{"pads short row", Row{"a"}, 3, Row{"a", "", ""}},
		{"truncates long row", Row{"a", "b", "c", "d"}, 2, Row{"a", "b"}},
		{"empty row", nil, 2, Row{"", ""}},
		{"zero width", Row{"a"}, 0, Row{}},
		{"negative width", Row{"a"}, -1, Row{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.row, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Reconcile(%q, %d) = %q, want %q", tt.row, tt.n, got, tt.want)
			}
		})
	}
}

func TestReconcile_DoesNotModifyInput(t *testing.T) {
	row := Row{"a", "b", "c"}
	out := Reconcile(row, 2)
	out[0] = "changed"

	if row[0] != "a" || len(row) != 3 {
		t.Errorf("input modified: %q", row)
	}
}
