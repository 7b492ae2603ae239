package render

// markdown.go renders a grid as a GitHub-Flavored Markdown table. Row 0 is the
// header; every row is padded to the grid width so ragged input still yields a
// valid table.

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/mattn/go-runewidth"
)

const (
	rowNumberHeader    = "#"
	plainSeparator     = "---"
	markdownBoldMarker = "**"
)

var separators = map[Alignment]string{
	AlignLeft:   ":---",
	AlignCenter: ":---:",
	AlignRight:  "---:",
}

var cellEscaper = strings.NewReplacer(
	"|", `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
)

// Markdown renders g as a Markdown table using the decoration and padding
// settings in cfg. cfg.OutputFormat is ignored.
func Markdown(g grid.Grid, cfg FormatConfig) string {
	if len(g) == 0 {
		return ""
	}
	width := g.Width()

	header := make([]string, width)
	for i := range header {
		header[i] = escapeCell(g.Cell(0, i))
		if cfg.BoldHeader {
			header[i] = bold(header[i])
		}
	}

	sepCell, ok := separators[cfg.Alignment]
	if !ok {
		sepCell = plainSeparator
	}
	sep := make([]string, width)
	for i := range sep {
		sep[i] = sepCell
	}

	body := make([][]string, 0, len(g)-1)
	for _, row := range g.Body() {
		cells := make([]string, width)
		for i := range cells {
			cells[i] = escapeCell(row.Cell(i))
		}
		if cfg.BoldFirstColumn && width > 0 {
			cells[0] = bold(cells[0])
		}
		body = append(body, cells)
	}

	if cfg.ShowRowNumbers {
		header = append([]string{rowNumberHeader}, header...)
		sep = append([]string{plainSeparator}, sep...)
		for i := range body {
			body[i] = append([]string{strconv.Itoa(i + 1)}, body[i]...)
		}
	}

	lines := make([][]string, 0, len(body)+2)
	lines = append(lines, header, sep)
	lines = append(lines, body...)

	if cfg.PrettyPrint {
		measure := utf8.RuneCountInString
		if cfg.DisplayWidth {
			measure = runewidth.StringWidth
		}
		padColumns(lines, measure)
	}

	var sb strings.Builder
	for i, cells := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("| ")
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString(" |")
	}
	return sb.String()
}

// padColumns right-pads every cell with spaces to the widest cell of its
// column. Widths are taken from the already decorated text.
func padColumns(lines [][]string, measure func(string) int) {
	if len(lines) == 0 {
		return
	}
	widths := make([]int, len(lines[0]))
	for _, cells := range lines {
		for i, c := range cells {
			if w := measure(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for _, cells := range lines {
		for i, c := range cells {
			if n := widths[i] - measure(c); n > 0 {
				cells[i] = c + strings.Repeat(" ", n)
			}
		}
	}
}

// escapeCell keeps a cell on one table line: pipes are backslash-escaped and
// line breaks become <br>.
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

func bold(s string) string {
	if s == "" {
		return s
	}
	return markdownBoldMarker + s + markdownBoldMarker
}
