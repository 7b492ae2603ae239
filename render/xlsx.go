package render

// xlsx.go writes a grid back out as a single-sheet workbook using excelize.
// Row 0 is styled bold; every value is stored as a string cell.

import (
	"fmt"
	"io"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/xuri/excelize/v2"
)

const defaultSheetName = "Sheet1"

// WriteXLSX encodes g as an .xlsx workbook with one sheet named sheet (or
// "Sheet1" when empty) and writes it to w.
func WriteXLSX(w io.Writer, g grid.Grid, sheet string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = defaultSheetName
	}
	if sheet != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, sheet); err != nil {
			return fmt.Errorf("sheet name %q: %w", sheet, err)
		}
	}

	for r, row := range g {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("cell %d,%d: %w", r, c, err)
			}
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	if width := g.Width(); len(g) > 0 && width > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(width, 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
