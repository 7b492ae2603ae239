package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

// FromCSV reads delimited text. comma 0 means ','. Records may have differing
// field counts and bare quotes inside fields are tolerated.
func FromCSV(r io.Reader, comma rune) (grid.Grid, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, grid.NewIngestError(SourceCSV, fmt.Errorf("parse: %w", err))
	}
	return FromStrings(records), nil
}
