package ingest

import (
	"errors"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

var errNoTable = errors.New("no table found")

// FromHTML reads the first <table> in raw. Each <tr> of that table (rows of
// nested tables excluded) becomes a row of its <th>/<td> cells. With
// keepMarkup, a cell's inner HTML is converted to Markdown; otherwise its text
// content is used. Cell text is trimmed.
func FromHTML(raw string, keepMarkup bool) (grid.Grid, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, grid.NewIngestError(SourceHTML, fmt.Errorf("parse: %w", err))
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, grid.NewIngestError(SourceHTML, errNoTable)
	}

	var conv *md.Converter
	if keepMarkup {
		conv = md.NewConverter("", true, nil)
	}

	g := grid.Grid{}
	var cellErr error
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if cellErr != nil || !tr.Closest("table").IsSelection(table) {
			return
		}
		row := grid.Row{}
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			if cellErr != nil {
				return
			}
			text, err := htmlCellText(cell, conv)
			if err != nil {
				cellErr = err
				return
			}
			row = append(row, text)
		})
		g = append(g, row)
	})
	if cellErr != nil {
		return nil, grid.NewIngestError(SourceHTML, cellErr)
	}
	return g, nil
}

func htmlCellText(cell *goquery.Selection, conv *md.Converter) (string, error) {
	if conv == nil {
		return strings.TrimSpace(cell.Text()), nil
	}
	inner, err := cell.Html()
	if err != nil {
		return "", fmt.Errorf("cell markup: %w", err)
	}
	text, err := conv.ConvertString(inner)
	if err != nil {
		return "", fmt.Errorf("cell to markdown: %w", err)
	}
	return strings.TrimSpace(text), nil
}
