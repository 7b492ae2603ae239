// Package grid holds the in-memory table model and the structural edits that
// can be applied to it.
//
// A Grid is an ordered list of rows; rows may have different lengths. Row 0 is
// the header by convention only: sorting, JSON keys and header styling treat it
// specially, but nothing in Grid itself enforces that.
//
// Every edit is a pure transform. Methods never modify the receiver and always
// return a fresh Grid, so callers can keep the previous value for undo.
package grid

import "github.com/tiendc/go-deepcopy"

// Row is an ordered sequence of cell values. Cells past the end of a row are
// treated as empty.
type Row []string

// Grid is an ordered sequence of rows.
type Grid []Row

// Width returns the maximum row length across all rows.
func (g Grid) Width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Cell returns the value at (r, c), or "" when either index is out of range.
func (g Grid) Cell(r, c int) string {
	if r < 0 || r >= len(g) {
		return ""
	}
	return g[r].Cell(c)
}

// Cell returns the value at column c, or "" when c is out of range.
func (r Row) Cell(c int) string {
	if c < 0 || c >= len(r) {
		return ""
	}
	return r[c]
}

// Padded returns a copy of r extended with empty cells to width w. Rows that
// are already at least w long are copied unchanged.
func (r Row) Padded(w int) Row {
	n := len(r)
	if w > n {
		n = w
	}
	out := make(Row, n)
	copy(out, r)
	return out
}

// Clone returns a deep copy of g. A nil grid clones to an empty, non-nil grid.
func (g Grid) Clone() Grid {
	if len(g) == 0 {
		return Grid{}
	}
	var out Grid
	// Copy only fails for unsupported kinds; [][]string is always supported.
	_ = deepcopy.Copy(&out, g)
	return out
}

// Equal reports whether g and other have the same rows with the same cells.
// Row length matters: ["a"] and ["a", ""] are different rows.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if !g[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether r and other hold the same cells in the same order.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Header returns row 0, or nil for an empty grid.
func (g Grid) Header() Row {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// Body returns every row after the header.
func (g Grid) Body() []Row {
	if len(g) < 2 {
		return nil
	}
	return g[1:]
}

// Clone returns a copy of r. An empty row clones to an empty, non-nil row.
func (r Row) Clone() Row {
	return append(make(Row, 0, len(r)), r...)
}
