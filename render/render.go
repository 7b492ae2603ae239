package render

import "github.com/Cortexa-LLC/mcp/src/gridmd/grid"

// Render serializes g according to cfg.OutputFormat. Unknown formats fall back
// to Markdown.
func Render(g grid.Grid, cfg FormatConfig) string {
	if len(g) == 0 {
		return ""
	}
	switch cfg.OutputFormat {
	case FormatCSV:
		return CSV(g)
	case FormatJSON:
		return JSON(g)
	case FormatHTML:
		return HTML(g, !cfg.RawHTML)
	default:
		return Markdown(g, cfg)
	}
}
