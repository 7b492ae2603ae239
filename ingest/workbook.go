package ingest

// workbook.go reads .xlsx/.xlsm workbooks with excelize. Cells come back as
// their formatted display text and blank rows between data rows are kept.

import (
	"fmt"
	"io"
	"slices"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/xuri/excelize/v2"
)

// Workbook is an open spreadsheet. Callers must Close it.
type Workbook struct {
	f      *excelize.File
	source string
}

// OpenWorkbook opens the workbook at path.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, grid.NewIngestError(SourceWorkbook, fmt.Errorf("open %s: %w", path, err))
	}
	return &Workbook{f: f, source: path}, nil
}

// ReadWorkbook reads a workbook from r. name is only used in error messages.
func ReadWorkbook(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, grid.NewIngestError(SourceWorkbook, fmt.Errorf("read %s: %w", name, err))
	}
	return &Workbook{f: f, source: name}, nil
}

// SheetNames lists sheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Sheet returns the named sheet as a grid.
func (w *Workbook) Sheet(name string) (grid.Grid, error) {
	if !slices.Contains(w.SheetNames(), name) {
		return nil, grid.NewIngestError(SourceWorkbook, fmt.Errorf("sheet %q not found in %s", name, w.source))
	}
	rows, err := w.f.GetRows(name)
	if err != nil {
		return nil, grid.NewIngestError(SourceWorkbook, fmt.Errorf("read sheet %q in %s: %w", name, w.source, err))
	}
	return FromStrings(rows), nil
}

// First returns the first sheet's name and grid.
func (w *Workbook) First() (string, grid.Grid, error) {
	names := w.SheetNames()
	if len(names) == 0 {
		return "", nil, grid.NewIngestError(SourceWorkbook, fmt.Errorf("%s has no sheets", w.source))
	}
	g, err := w.Sheet(names[0])
	if err != nil {
		return "", nil, err
	}
	return names[0], g, nil
}

// Close releases the workbook's temporary files.
func (w *Workbook) Close() error {
	return w.f.Close()
}
