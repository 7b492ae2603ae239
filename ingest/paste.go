package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

// FromPastedText reads clipboard text as tab-separated rows. Cell contents are
// kept as-is. Empty or whitespace-only input yields an empty grid, which
// callers treat as "nothing to load". A CR before each LF is dropped and one
// trailing line break does not produce an extra row.
func FromPastedText(raw string) (grid.Grid, error) {
	if strings.TrimSpace(raw) == "" {
		return grid.Grid{}, nil
	}
	if !utf8.ValidString(raw) {
		return nil, grid.NewIngestError(SourcePaste, errInvalidUTF8)
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")

	lines := strings.Split(text, "\n")
	g := make(grid.Grid, len(lines))
	for i, line := range lines {
		g[i] = grid.Row(strings.Split(line, "\t"))
	}
	return g, nil
}
