package render

import (
	"bytes"
	"encoding/json"
	"html"
	"strconv"
	"strings"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

// CSV renders g with every cell double-quoted and embedded quotes doubled.
// Rows are padded to the grid width and joined with "\n"; row 0 is an ordinary
// record.
func CSV(g grid.Grid) string {
	if len(g) == 0 {
		return ""
	}
	width := g.Width()
	lines := make([]string, len(g))
	cells := make([]string, width)
	for r, row := range g {
		for i := range cells {
			cells[i] = `"` + strings.ReplaceAll(row.Cell(i), `"`, `""`) + `"`
		}
		lines[r] = strings.Join(cells, ",")
	}
	return strings.Join(lines, "\n")
}

// JSON renders the body rows as an array of objects keyed by the header row,
// indented by two spaces. Empty header cells are named col_N (1-based). When a
// header name repeats, the key keeps its first position and takes the value of
// the last column with that name. A row without a cell at some column maps that
// key to null.
func JSON(g grid.Grid) string {
	if len(g) == 0 {
		return ""
	}
	width := g.Width()

	var keys []string
	slot := make([]int, width)
	index := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := g.Cell(0, i)
		if name == "" {
			name = "col_" + strconv.Itoa(i+1)
		}
		k, seen := index[name]
		if !seen {
			k = len(keys)
			index[name] = k
			keys = append(keys, name)
		}
		slot[i] = k
	}

	body := g.Body()
	if len(body) == 0 {
		return "[]"
	}

	var sb strings.Builder
	sb.WriteString("[\n")
	for r, row := range body {
		values := make([]string, len(keys))
		for i := 0; i < width; i++ {
			if i < len(row) {
				values[slot[i]] = quoteJSON(row[i])
			} else {
				values[slot[i]] = "null"
			}
		}

		if len(keys) == 0 {
			sb.WriteString("  {}")
		} else {
			sb.WriteString("  {\n")
			for k, key := range keys {
				sb.WriteString("    ")
				sb.WriteString(quoteJSON(key))
				sb.WriteString(": ")
				sb.WriteString(values[k])
				if k < len(keys)-1 {
					sb.WriteByte(',')
				}
				sb.WriteByte('\n')
			}
			sb.WriteString("  }")
		}
		if r < len(body)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("]")
	return sb.String()
}

// quoteJSON returns s as a JSON string literal without HTML escaping of <, >
// and &.
func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// HTML renders g as a <table> with row 0 in <thead> and the remaining rows in
// <tbody>. With escape set, cell text is HTML-escaped; otherwise it is inserted
// verbatim.
func HTML(g grid.Grid, escape bool) string {
	if len(g) == 0 {
		return ""
	}
	width := g.Width()
	text := func(s string) string {
		if escape {
			return html.EscapeString(s)
		}
		return s
	}
	writeRow := func(sb *strings.Builder, row grid.Row, tag string) {
		sb.WriteString("  <tr>\n")
		for i := 0; i < width; i++ {
			sb.WriteString("    <" + tag + ">")
			sb.WriteString(text(row.Cell(i)))
			sb.WriteString("</" + tag + ">\n")
		}
		sb.WriteString("  </tr>\n")
	}

	var sb strings.Builder
	sb.WriteString("<table border=\"1\">\n")
	sb.WriteString("<thead>\n")
	writeRow(&sb, g.Header(), "th")
	sb.WriteString("</thead>\n")
	sb.WriteString("<tbody>\n")
	for _, row := range g.Body() {
		writeRow(&sb, row, "td")
	}
	sb.WriteString("</tbody>\n")
	sb.WriteString("</table>")
	return sb.String()
}
