package core

// Reconcile returns a row of exactly n fields: missing trailing fields are
// filled with "" and surplus fields are dropped. The input is not modified.
func Reconcile(row Row, n int) Row {
	if n < 0 {
		n = 0
	}
	out := make(Row, n)
	copy(out, row)
	return out
}
