package ingest

// pptx.go extracts tables from PPTX decks.
//
// PPTX files are ZIP archives. Slides live at ppt/slides/slideN.xml and are
// visited in numeric order. Tables are DrawingML a:tbl elements inside
// graphic frames; element names are compared by local name so the a: prefix
// needs no namespace registration.

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

const SourcePPTX = "pptx"

// pptxSlideRE matches the canonical slide paths inside a PPTX ZIP archive,
// capturing the slide number for numeric sort.
var pptxSlideRE = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// SlideTable is one table of a deck. Slide is 1-based; Index counts tables
// within the slide from 1.
type SlideTable struct {
	Slide int
	Index int
	Grid  grid.Grid
}

// Name labels the table for sheet-style selection, e.g. "Slide 2 Table 1".
func (t SlideTable) Name() string {
	return "Slide " + strconv.Itoa(t.Slide) + " Table " + strconv.Itoa(t.Index)
}

// FromPPTX returns every table of the deck at path in slide order.
func FromPPTX(path string) ([]SlideTable, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, grid.NewIngestError(SourcePPTX, fmt.Errorf("open %s: %w", path, err))
	}
	defer func() { _ = zr.Close() }()

	type slideEntry struct {
		num  int
		file *zip.File
	}

	var entries []slideEntry
	for _, f := range zr.File {
		m := pptxSlideRE.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		entries = append(entries, slideEntry{n, f})
	}
	if len(entries) == 0 {
		return nil, grid.NewIngestError(SourcePPTX, fmt.Errorf("no slides found in %s", path))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].num < entries[j].num })

	out := []SlideTable{}
	for _, e := range entries {
		rc, err := e.file.Open()
		if err != nil {
			return nil, grid.NewIngestError(SourcePPTX, fmt.Errorf("open slide %d: %w", e.num, err))
		}
		tables, err := parseSlideTables(rc)
		_ = rc.Close()
		if err != nil {
			return nil, grid.NewIngestError(SourcePPTX, fmt.Errorf("slide %d: %w", e.num, err))
		}
		for i, g := range tables {
			out = append(out, SlideTable{Slide: e.num, Index: i + 1, Grid: g})
		}
	}
	return out, nil
}

type slideTableParser struct {
	tables []grid.Grid

	inTable  bool
	rows     grid.Grid
	currRow  grid.Row
	inCell   bool
	paras    int
	inText   bool
	cellText strings.Builder
}

func parseSlideTables(r io.Reader) ([]grid.Grid, error) {
	dec := xml.NewDecoder(r)
	p := &slideTableParser{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse slide xml: %w", err)
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

func (p *slideTableParser) handleStart(t xml.StartElement) {
	switch t.Name.Local {
	case "tbl":
		p.inTable = true
		p.rows = grid.Grid{}
	case "tr":
		if p.inTable {
			p.currRow = grid.Row{}
		}
	case "tc":
		if p.inTable {
			p.inCell = true
			p.paras = 0
			p.cellText.Reset()
		}
	case "p":
		if p.inCell {
			if p.paras > 0 {
				p.cellText.WriteByte('\n')
			}
			p.paras++
		}
	case "br":
		if p.inCell {
			p.cellText.WriteByte('\n')
		}
	case "t":
		p.inText = true
	}
}

func (p *slideTableParser) handleEnd(local string) {
	switch local {
	case "t":
		p.inText = false
	case "tc":
		if p.inCell {
			p.currRow = append(p.currRow, strings.TrimSpace(p.cellText.String()))
			p.inCell = false
		}
	case "tr":
		if p.inTable {
			p.rows = append(p.rows, p.currRow)
			p.currRow = nil
		}
	case "tbl":
		if p.inTable {
			p.tables = append(p.tables, p.rows)
			p.inTable = false
			p.rows = nil
		}
	}
}
