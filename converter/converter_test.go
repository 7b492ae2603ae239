package converter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/Cortexa-LLC/mcp/src/gridmd/config"
	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/Cortexa-LLC/mcp/src/gridmd/render"
)

func newTestConverter() *Converter {
	return NewConverter(&config.Config{MaxFileSizeBytes: config.DefaultMaxFileBytes})
}

func markdownOpts() Options {
	cfg := render.DefaultFormatConfig()
	cfg.PrettyPrint = false
	cfg.BoldHeader = false
	return Options{Format: cfg}
}

// ---- ConvertFile -----------------------------------------------------------

func TestConverter_ConvertFile_CSV(t *testing.T) {
	path := writeTempFile(t, "data.csv", "A,B\n1,2\n")
	out, err := newTestConverter().ConvertFile(context.Background(), path, markdownOpts())
	assertNoErr(t, err)
	if want := "| A | B |\n| :--- | :--- |\n| 1 | 2 |"; out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestConverter_ConvertFile_TSVToJSON(t *testing.T) {
	path := writeTempFile(t, "data.tsv", "name\tqty\napple\t3\n")
	opts := markdownOpts()
	opts.Format.OutputFormat = render.FormatJSON
	out, err := newTestConverter().ConvertFile(context.Background(), path, opts)
	assertNoErr(t, err)
	assertContains(t, out, `"name": "apple"`)
	assertContains(t, out, `"qty": "3"`)
}

func TestConverter_ConvertFile_HTML(t *testing.T) {
	path := writeTempFile(t, "page.html",
		`<html><body><h1>Hello</h1><table><tr><th>K</th></tr><tr><td>v</td></tr></table></body></html>`)
	out, err := newTestConverter().ConvertFile(context.Background(), path, markdownOpts())
	assertNoErr(t, err)
	assertContains(t, out, "| K |")
	assertContains(t, out, "| v |")
}

func TestConverter_ConvertFile_JSONToCSV(t *testing.T) {
	path := writeTempFile(t, "data.json", `[{"key":"value"}]`)
	opts := markdownOpts()
	opts.Format.OutputFormat = render.FormatCSV
	out, err := newTestConverter().ConvertFile(context.Background(), path, opts)
	assertNoErr(t, err)
	if want := "\"key\"\n\"value\""; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestConverter_ConvertFile_MarkdownWithOps(t *testing.T) {
	path := writeTempFile(t, "table.md", "| n |\n|---|\n| 10 |\n| 2 |\n| 2 |\n")
	opts := markdownOpts()
	opts.Ops = []grid.Op{
		{Name: grid.OpRemoveDuplicateRows},
		{Name: grid.OpSortByColumn, Index: 0},
	}
	out, err := newTestConverter().ConvertFile(context.Background(), path, opts)
	assertNoErr(t, err)
	if want := "| n |\n| :--- |\n| 2 |\n| 10 |"; out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestConverter_ConvertFile_Filter(t *testing.T) {
	path := writeTempFile(t, "data.csv", "city,n\nParis,2\nOslo,1\nparis,3\n")
	opts := markdownOpts()
	opts.Ops = []grid.Op{{Name: grid.OpSortByColumn, Index: 1}}
	opts.Filter = "PAR"
	out, err := newTestConverter().ConvertFile(context.Background(), path, opts)
	assertNoErr(t, err)
	if want := "| city | n |\n| :--- | :--- |\n| Paris | 2 |\n| paris | 3 |"; out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestConverter_ConvertFile_BadOpLeavesNoOutput(t *testing.T) {
	path := writeTempFile(t, "data.csv", "A\n1\n")
	opts := markdownOpts()
	opts.Ops = []grid.Op{{Name: grid.OpSearchReplace, Query: "(", Regex: true}}
	out, err := newTestConverter().ConvertFile(context.Background(), path, opts)
	assertErr(t, err)
	if !errors.Is(err, grid.ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestConverter_ConvertFile_DOCX(t *testing.T) {
	path := makeDocx(t,
		`<w:p><w:r><w:t>Intro</w:t></w:r></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Col</w:t></w:r></w:p></w:tc></w:tr>`+
			`<w:tr><w:tc><w:p><w:r><w:t>val</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)
	out, err := newTestConverter().ConvertFile(context.Background(), path, markdownOpts())
	assertNoErr(t, err)
	assertContains(t, out, "| Col |")
	assertContains(t, out, "| val |")
}

func TestConverter_ConvertFile_XLSX(t *testing.T) {
	path := makeXLSX(t, "Prices", [][]string{
		{"Product", "Price"},
		{"Widget", "9.99"},
	}, "Other")
	out, err := newTestConverter().ConvertFile(context.Background(), path, markdownOpts())
	assertNoErr(t, err)
	assertContains(t, out, "| Product | Price |")
	assertContains(t, out, "| Widget | 9.99 |")

	opts := markdownOpts()
	opts.Sheet = "Other"
	out, err = newTestConverter().ConvertFile(context.Background(), path, opts)
	assertNoErr(t, err)
	assertContains(t, out, "Other-header")
}

func TestConverter_ConvertFile_AllSheets(t *testing.T) {
	path := makeXLSX(t, "Summary", [][]string{
		{"Col1", "Col2"},
		{"a|b", "c"},
	}, "Notes")
	opts := markdownOpts()
	opts.AllSheets = true
	out, err := newTestConverter().ConvertFile(context.Background(), path, opts)
	assertNoErr(t, err)
	assertContains(t, out, "## Summary\n\n| Col1 | Col2 |\n| --- | --- |\n| a\\|b | c |\n\n")
	assertContains(t, out, "## Notes")
}

func TestConverter_ConvertFile_NotFound(t *testing.T) {
	_, err := newTestConverter().ConvertFile(
		context.Background(), "/no/such/file.csv", markdownOpts())
	assertErr(t, err)
}

func TestConverter_ConvertFile_UnsupportedFormat(t *testing.T) {
	path := writeTempFile(t, "scan.pdf", "not a real pdf")
	_, err := newTestConverter().ConvertFile(context.Background(), path, markdownOpts())
	assertErr(t, err)
}

func TestConverter_ConvertFile_NotAnXLSX(t *testing.T) {
	path := writeTempFile(t, "bad.xlsx", "this is not a spreadsheet")
	_, err := newTestConverter().ConvertFile(context.Background(), path, markdownOpts())
	assertErr(t, err)
	if !errors.Is(err, grid.ErrIngest) {
		t.Errorf("expected ErrIngest, got %v", err)
	}
}

func TestConverter_ConvertFile_TooLarge(t *testing.T) {
	path := writeTempFile(t, "big.csv", "x")

	// Override the limit to 0 so any non-empty file triggers the check.
	conv := newTestConverter()
	conv.cfg.MaxFileSizeBytes = 0

	_, err := conv.ConvertFile(context.Background(), path, markdownOpts())
	assertErr(t, err)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestConverter_SheetOnSingleTableFile(t *testing.T) {
	path := writeTempFile(t, "data.csv", "A\n")
	_, err := newTestConverter().LoadFile(context.Background(), path, "Sheet2")
	assertErr(t, err)
}

// ---- Sheets ----------------------------------------------------------------

func TestConverter_Sheets(t *testing.T) {
	path := makeXLSX(t, "First", [][]string{{"a"}}, "Second", "Third")
	names, err := newTestConverter().Sheets(context.Background(), path)
	assertNoErr(t, err)
	if got := strings.Join(names, ","); got != "First,Second,Third" {
		t.Errorf("Sheets() = %s", got)
	}

	csvPath := writeTempFile(t, "data.csv", "A\n")
	_, err = newTestConverter().Sheets(context.Background(), csvPath)
	assertErr(t, err)
}

func TestConverter_Sheets_DOCXTables(t *testing.T) {
	table := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>x</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
	path := makeDocx(t, table+table)
	names, err := newTestConverter().Sheets(context.Background(), path)
	assertNoErr(t, err)
	if got := strings.Join(names, ","); got != "Table 1,Table 2" {
		t.Errorf("Sheets() = %s", got)
	}
}

// ---- ConvertURI ------------------------------------------------------------

func TestConverter_ConvertURI_FileScheme(t *testing.T) {
	path := writeTempFile(t, "data.csv", "via,file\n1,2\n")
	uri := fmt.Sprintf("file://%s", path)
	out, err := newTestConverter().ConvertURI(context.Background(), uri, markdownOpts())
	assertNoErr(t, err)
	assertContains(t, out, "| via | file |")
}

func TestConverter_ConvertURI_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/table.csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			fmt.Fprint(w, "h\nfrom-csv\n")
		case "/missing":
			http.NotFound(w, r)
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<table><tr><th>h</th></tr><tr><td>from-html</td></tr></table>")
		}
	}))
	defer srv.Close()

	conv := newTestConverter()
	out, err := conv.ConvertURI(context.Background(), srv.URL+"/page", markdownOpts())
	assertNoErr(t, err)
	assertContains(t, out, "| from-html |")

	out, err = conv.ConvertURI(context.Background(), srv.URL+"/table.csv", markdownOpts())
	assertNoErr(t, err)
	assertContains(t, out, "| from-csv |")

	_, err = conv.ConvertURI(context.Background(), srv.URL+"/missing", markdownOpts())
	assertErr(t, err)
}

func TestConverter_LoadURI_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<table><tr><td>"+strings.Repeat("x", 64)+"</td></tr></table>")
	}))
	defer srv.Close()

	conv := newTestConverter()
	conv.cfg.MaxFileSizeBytes = 16
	_, err := conv.LoadURI(context.Background(), srv.URL, "")
	assertErr(t, err)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestConverter_ConvertURI_UnsupportedScheme(t *testing.T) {
	_, err := newTestConverter().ConvertURI(
		context.Background(), "ftp://example.com/file.csv", markdownOpts())
	assertErr(t, err)
}

func TestConverter_ConvertURI_InvalidURI(t *testing.T) {
	// url.Parse is permissive; a truly invalid URI still has no scheme
	_, err := newTestConverter().ConvertURI(
		context.Background(), "://bad", markdownOpts())
	assertErr(t, err)
}

// ---- formats ---------------------------------------------------------------

func TestCanConvert(t *testing.T) {
	for _, name := range []string{"a.xlsx", "B.XLSM", "c.csv", "d.tsv", "e.json", "f.htm", "g.md", "h.docx", "i.pptx"} {
		if !CanConvert(name) {
			t.Errorf("CanConvert(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"a.xls", "b.pdf", "c.png", "noext"} {
		if CanConvert(name) {
			t.Errorf("CanConvert(%q) = true, want false", name)
		}
	}
}

func TestIsWorkbook(t *testing.T) {
	for name, want := range map[string]bool{"a.xlsx": true, "B.XLSM": true, "c.csv": false, "d.docx": false, "e": false} {
		if got := IsWorkbook(name); got != want {
			t.Errorf("IsWorkbook(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSupportedFormats_Sorted(t *testing.T) {
	got := SupportedFormats()
	if len(got) != len(inputExts) || !sort.StringsAreSorted(got) || got[0] != "csv" {
		t.Errorf("SupportedFormats() = %v", got)
	}
}

// ---- GetConversionInfo -----------------------------------------------------

func TestConverter_GetConversionInfo_ContainsFormats(t *testing.T) {
	out := newTestConverter().GetConversionInfo(context.Background())
	for _, want := range []string{"csv", "json", "html", "docx", "xlsx", "markdown", "sortByColumn", "default"} {
		assertContains(t, out, want)
	}
}

func TestConverter_GetConversionInfo_NotEmpty(t *testing.T) {
	out := newTestConverter().GetConversionInfo(context.Background())
	assertNotEmpty(t, out)
}

// ---- helpers ---------------------------------------------------------------

// Ensure temp dir helper is exercised (sanity check for test helpers).
func TestWriteTempFile(t *testing.T) {
	path := writeTempFile(t, "hello.txt", "hello")
	if !strings.HasSuffix(path, "hello.txt") {
		t.Errorf("unexpected path %s", path)
	}
}
