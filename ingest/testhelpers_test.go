package ingest

// Shared test helpers for the ingest package.

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// makeDocx builds a minimal .docx file containing the given OOXML body
// fragment and returns its path.
func makeDocx(t *testing.T, bodyXML string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("makeDocx create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("makeDocx zip entry: %v", err)
	}

	const ns = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document ` + ns + `><w:body>` + bodyXML + `</w:body></w:document>`

	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("makeDocx write: %v", err)
	}
	return path
}

type sheetFixture struct {
	name string
	rows [][]string
}

// makeXLSX builds an .xlsx file with the given sheets (in order) and returns
// its path. Rows are written at their index, so an empty row leaves a gap.
func makeXLSX(t *testing.T, sheets ...sheetFixture) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			// Rename the default sheet first so SetCellValue writes to the right name.
			f.SetSheetName("Sheet1", s.name)
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("makeXLSX new sheet: %v", err)
		}
		for r, row := range s.rows {
			for c, val := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				if err := f.SetCellValue(s.name, cell, val); err != nil {
					t.Fatalf("makeXLSX set %s: %v", cell, err)
				}
			}
		}
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("makeXLSX SaveAs: %v", err)
	}
	return path
}

// docxTable wraps rows of cell text into a w:tbl fragment.
func docxTable(rows ...[]string) string {
	out := "<w:tbl>"
	for _, row := range rows {
		out += "<w:tr>"
		for _, cell := range row {
			out += "<w:tc><w:p><w:r><w:t>" + cell + "</w:t></w:r></w:p></w:tc>"
		}
		out += "</w:tr>"
	}
	return out + "</w:tbl>"
}

// makePPTX builds a minimal .pptx with one slide per fragment; each fragment
// is placed inside the slide's shape tree. Slides are written in reverse so
// readers cannot rely on archive order.
func makePPTX(t *testing.T, slides ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("makePPTX create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	const ns = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	for i := len(slides) - 1; i >= 0; i-- {
		w, err := zw.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		if err != nil {
			t.Fatalf("makePPTX zip entry: %v", err)
		}
		doc := `<?xml version="1.0" encoding="UTF-8"?>` +
			`<p:sld ` + ns + `><p:cSld><p:spTree>` + slides[i] + `</p:spTree></p:cSld></p:sld>`
		if _, err := w.Write([]byte(doc)); err != nil {
			t.Fatalf("makePPTX write: %v", err)
		}
	}
	return path
}

// pptxTable wraps rows of cell text into a graphic frame holding an a:tbl.
func pptxTable(rows ...[]string) string {
	out := `<p:graphicFrame><a:graphic><a:graphicData><a:tbl>`
	for _, row := range rows {
		out += "<a:tr>"
		for _, cell := range row {
			out += "<a:tc><a:txBody><a:p><a:r><a:t>" + cell + "</a:t></a:r></a:p></a:txBody></a:tc>"
		}
		out += "</a:tr>"
	}
	return out + `</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`
}
