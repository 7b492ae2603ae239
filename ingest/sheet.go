// Package ingest builds grid.Grid values from external sources: decoded
// spreadsheet sheets, pasted clipboard text, workbooks, CSV, JSON, HTML,
// Markdown and DOCX tables.
//
// No source performs header inference; row 0 is whatever the source's first
// row is. Every failure is a *grid.IngestError and no partially built grid is
// ever returned.
package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

// Source labels carried by IngestError.
const (
	SourceSheet    = "sheet"
	SourcePaste    = "paste"
	SourceWorkbook = "workbook"
	SourceCSV      = "csv"
	SourceJSON     = "json"
	SourceHTML     = "html"
	SourceMarkdown = "markdown"
	SourceDOCX     = "docx"
)

var errInvalidUTF8 = errors.New("input is not valid UTF-8")

// FromSheetArray copies an array-of-arrays sheet dump into a grid, keeping row
// and cell order and blank rows. Scalar values are converted to text; any
// other payload fails the whole ingest.
func FromSheetArray(rows [][]any) (grid.Grid, error) {
	g := make(grid.Grid, len(rows))
	for r, row := range rows {
		out := make(grid.Row, len(row))
		for c, v := range row {
			s, err := cellText(v)
			if err != nil {
				return nil, grid.NewIngestError(SourceSheet, fmt.Errorf("row %d, column %d: %w", r, c, err))
			}
			out[c] = s
		}
		g[r] = out
	}
	return g, nil
}

// FromStrings copies rows that are already text.
func FromStrings(rows [][]string) grid.Grid {
	g := make(grid.Grid, len(rows))
	for i, row := range rows {
		g[i] = grid.Row(row).Clone()
	}
	return g
}

func cellText(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		if !utf8.Valid(v) {
			return "", errInvalidUTF8
		}
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported cell value of type %T", v)
	}
}
