package grid

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AddRow appends one row of empty cells as wide as the grid (at least one cell).
func (g Grid) AddRow() Grid {
	w := g.Width()
	if w < 1 {
		w = 1
	}
	out := g.Clone()
	return append(out, make(Row, w))
}

// AddColumn appends an empty cell to every row, header included. Short rows are
// padded first so that every row ends up exactly Width()+1 cells long.
func (g Grid) AddColumn() Grid {
	w := g.Width()
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append(row.Padded(w), "")
	}
	return out
}

// DeleteRow removes the row at index. An out-of-range index leaves the grid
// unchanged.
func (g Grid) DeleteRow(index int) Grid {
	if index < 0 || index >= len(g) {
		return g.Clone()
	}
	out := make(Grid, 0, len(g)-1)
	for i, row := range g {
		if i == index {
			continue
		}
		out = append(out, row.Clone())
	}
	return out
}

// DeleteColumn removes the cell at index from every row that has one. Rows too
// short to contain index are kept as they are.
func (g Grid) DeleteColumn(index int) Grid {
	if index < 0 {
		return g.Clone()
	}
	out := make(Grid, len(g))
	for i, row := range g {
		if index >= len(row) {
			out[i] = row.Clone()
			continue
		}
		r := make(Row, 0, len(row)-1)
		r = append(r, row[:index]...)
		r = append(r, row[index+1:]...)
		out[i] = r
	}
	return out
}

// Transpose swaps rows and columns. The result has Width() rows, each as long
// as the original row count; missing source cells become "".
func (g Grid) Transpose() Grid {
	w := g.Width()
	out := make(Grid, w)
	for c := 0; c < w; c++ {
		row := make(Row, len(g))
		for r := range g {
			row[r] = g[r].Cell(c)
		}
		out[c] = row
	}
	return out
}

// SortByColumn orders the body rows by the cell at col, keeping the header row
// first. Comparison is locale aware, numeric aware ("2" before "10") and
// ignores case and accents; rows with equal keys keep their relative order.
// An out-of-range col leaves the grid unchanged.
func (g Grid) SortByColumn(col int) Grid {
	out := g.Clone()
	if col < 0 || col >= g.Width() || len(out) < 3 {
		return out
	}
	cl := collate.New(language.Und, collate.Numeric, collate.Loose)
	body := out[1:]
	sort.SliceStable(body, func(i, j int) bool {
		return cl.CompareString(body[i].Cell(col), body[j].Cell(col)) < 0
	})
	return out
}

// RemoveEmptyRows drops every row whose cells are all empty or whitespace.
// The header row is not exempt: callers that need it must check for a blank
// header themselves.
func (g Grid) RemoveEmptyRows() Grid {
	out := make(Grid, 0, len(g))
	for _, row := range g {
		if row.Blank() {
			continue
		}
		out = append(out, row.Clone())
	}
	return out
}

// Blank reports whether every cell in r is empty or whitespace only.
func (r Row) Blank() bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// RemoveDuplicateRows keeps the first occurrence of every distinct row and
// drops later exact copies. Rows of different length are never duplicates.
func (g Grid) RemoveDuplicateRows() Grid {
	seen := make(map[string]struct{}, len(g))
	out := make(Grid, 0, len(g))
	for _, row := range g {
		k := row.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row.Clone())
	}
	return out
}

// key encodes r unambiguously: each cell is length-prefixed.
func (r Row) key() string {
	var b strings.Builder
	for _, c := range r {
		b.WriteString(strconv.Itoa(len(c)))
		b.WriteByte(':')
		b.WriteString(c)
	}
	return b.String()
}

// SearchReplace replaces every occurrence of query in every cell. With useRegex
// the query is compiled as a regular expression and the replacement may refer
// to groups as $1 or ${name}. A pattern that fails to compile returns a
// *PatternError and the receiver is left as it was. An empty query is a no-op.
func (g Grid) SearchReplace(query, replacement string, useRegex bool) (Grid, error) {
	if query == "" {
		return g.Clone(), nil
	}

	replace := func(s string) string { return strings.ReplaceAll(s, query, replacement) }
	if useRegex {
		re, err := regexp.Compile(query)
		if err != nil {
			return g, &PatternError{Pattern: query, Err: err}
		}
		replace = func(s string) string { return re.ReplaceAllString(s, replacement) }
	}

	out := make(Grid, len(g))
	for i, row := range g {
		r := make(Row, len(row))
		for j, c := range row {
			r[j] = replace(c)
		}
		out[i] = r
	}
	return out, nil
}

// UpdateCell sets the cell at (row, col), padding the row with empty cells when
// col lies past its end. A row index outside the grid or a negative col leaves
// the grid unchanged.
func (g Grid) UpdateCell(row, col int, value string) Grid {
	out := g.Clone()
	if row < 0 || row >= len(out) || col < 0 {
		return out
	}
	r := out[row].Padded(col + 1)
	r[col] = value
	out[row] = r
	return out
}

// Filter returns the header row plus every body row containing query in any
// cell, compared case-insensitively. An empty query returns a copy of g.
func (g Grid) Filter(query string) Grid {
	if query == "" {
		return g.Clone()
	}
	q := strings.ToLower(query)
	out := make(Grid, 0, len(g))
	for i, row := range g {
		if i == 0 || row.contains(q) {
			out = append(out, row.Clone())
		}
	}
	return out
}

func (r Row) contains(lowerQuery string) bool {
	for _, c := range r {
		if strings.Contains(strings.ToLower(c), lowerQuery) {
			return true
		}
	}
	return false
}
