package ingest

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

var (
	markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
	lineBreakTag   = regexp.MustCompile(`(?i)^<br\s*/?>$`)
)

// FromMarkdown reads the first GFM table in src: the header row, then every
// body row. <br> tags become line breaks again and inline formatting such as
// **bold** is reduced to its text.
func FromMarkdown(src []byte) (grid.Grid, error) {
	doc := markdownParser.Parse(text.NewReader(src))

	var table *extast.Table
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*extast.Table); ok && entering {
			table = t
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if table == nil {
		return nil, grid.NewIngestError(SourceMarkdown, errNoTable)
	}

	g := grid.Grid{}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		switch row.(type) {
		case *extast.TableHeader, *extast.TableRow:
		default:
			continue
		}
		cells := grid.Row{}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, markdownCellText(cell, src))
		}
		g = append(g, cells)
	}
	return g, nil
}

func markdownCellText(cell ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(cell, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			buf.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(n.Value)
		case *ast.AutoLink:
			buf.Write(n.Label(src))
		case *ast.RawHTML:
			var raw bytes.Buffer
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				raw.Write(seg.Value(src))
			}
			if lineBreakTag.Match(raw.Bytes()) {
				buf.WriteByte('\n')
			} else {
				buf.Write(raw.Bytes())
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.ReplaceAll(buf.String(), `\|`, "|")
}
