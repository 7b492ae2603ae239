package render

import (
	"strings"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

const sheetHeading = "## "

// NamedGrid is one sheet of a workbook.
type NamedGrid struct {
	Name string    `json:"name"`
	Grid grid.Grid `json:"grid"`
}

// Workbook renders every sheet as a level-2 heading followed by a plain
// Markdown table (no decoration, no padding). Blank rows are dropped and sheets
// left with no rows are skipped entirely.
func Workbook(sheets []NamedGrid) string {
	plain := FormatConfig{OutputFormat: FormatMarkdown}

	var sb strings.Builder
	for _, s := range sheets {
		g := s.Grid.RemoveEmptyRows()
		if len(g) == 0 {
			continue
		}
		sb.WriteString(sheetHeading + s.Name + "\n\n")
		sb.WriteString(Markdown(g, plain))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
