package ingest

// DOCX table extraction.
//
// DOCX files are ZIP archives containing OOXML. The main document lives at
// word/document.xml. We stream-parse that XML and collect every top-level
// w:tbl as its own grid; paragraphs outside tables are ignored.

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

const docxDocumentPath = "word/document.xml"

// FromDOCX returns every top-level table of the document at path, in document
// order. A document without tables yields an empty slice.
func FromDOCX(path string) ([]grid.Grid, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, grid.NewIngestError(SourceDOCX, fmt.Errorf("open %s: %w", path, err))
	}
	defer zr.Close()

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == docxDocumentPath {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, grid.NewIngestError(SourceDOCX, fmt.Errorf("%s not found in %s", docxDocumentPath, path))
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, grid.NewIngestError(SourceDOCX, fmt.Errorf("open %s: %w", docxDocumentPath, err))
	}
	defer rc.Close()

	tables, err := parseDocxTables(rc)
	if err != nil {
		return nil, grid.NewIngestError(SourceDOCX, err)
	}
	return tables, nil
}

type docxTableParser struct {
	tables []grid.Grid

	// depth of w:tbl nesting; only depth 1 tables are collected, nested
	// tables are flattened into the enclosing cell's text.
	depth int

	rows     grid.Grid
	currRow  grid.Row
	inCell   bool
	cellSpan int
	cellText strings.Builder
	paras    int
	inRun    bool
	inText   bool
}

func parseDocxTables(r io.Reader) ([]grid.Grid, error) {
	dec := xml.NewDecoder(r)
	p := &docxTableParser{tables: []grid.Grid{}}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.handleStart(t)
		case xml.EndElement:
			p.handleEnd(t.Name.Local)
		case xml.CharData:
			if p.inCell && p.inText {
				p.cellText.Write(t)
			}
		}
	}
	return p.tables, nil
}

func (p *docxTableParser) handleStart(t xml.StartElement) {
	switch t.Name.Local {
	case "tbl":
		p.depth++
		if p.depth == 1 {
			p.rows = grid.Grid{}
		}
	case "tr":
		if p.depth == 1 {
			p.currRow = grid.Row{}
		}
	case "tc":
		if p.depth == 1 {
			p.inCell = true
			p.cellSpan = 1
			p.paras = 0
			p.cellText.Reset()
		}
	case "gridSpan":
		if p.inCell && p.depth == 1 {
			if n, err := strconv.Atoi(attrVal(t, "val")); err == nil && n > 1 {
				p.cellSpan = n
			}
		}
	case "p":
		if p.inCell {
			if p.paras > 0 {
				p.cellText.WriteByte('\n')
			}
			p.paras++
		}
	case "r":
		p.inRun = true
	case "t":
		p.inText = true
	case "tab":
		if p.inCell && p.inRun {
			p.cellText.WriteByte('\t')
		}
	case "br", "cr":
		if p.inCell && p.inRun {
			p.cellText.WriteByte('\n')
		}
	}
}

func (p *docxTableParser) handleEnd(local string) {
	switch local {
	case "r":
		p.inRun = false
	case "t":
		p.inText = false
	case "tc":
		if p.depth == 1 && p.inCell {
			p.currRow = append(p.currRow, strings.TrimSpace(p.cellText.String()))
			// Horizontally merged cells keep later columns aligned.
			for i := 1; i < p.cellSpan; i++ {
				p.currRow = append(p.currRow, "")
			}
			p.inCell = false
			p.cellText.Reset()
		}
	case "tr":
		if p.depth == 1 {
			p.rows = append(p.rows, p.currRow)
			p.currRow = nil
		}
	case "tbl":
		if p.depth == 1 {
			p.tables = append(p.tables, p.rows)
			p.rows = nil
		}
		if p.depth > 0 {
			p.depth--
		}
	}
}

func attrVal(t xml.StartElement, localName string) string {
	for _, a := range t.Attr {
		if a.Name.Local == localName {
			return a.Value
		}
	}
	return ""
}
