package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/Cortexa-LLC/mcp/src/gridmd/ingest"
	"github.com/Cortexa-LLC/mcp/src/gridmd/render"
)

// inputKind groups file extensions by the ingest source that reads them.
type inputKind int

const (
	kindWorkbook inputKind = iota
	kindCSV
	kindTSV
	kindJSON
	kindHTML
	kindMarkdown
	kindDOCX
	kindPPTX
)

// inputExts are all file formats a table can be loaded from.
var inputExts = map[string]inputKind{
	".xlsx":     kindWorkbook,
	".xlsm":     kindWorkbook,
	".csv":      kindCSV,
	".tsv":      kindTSV,
	".tab":      kindTSV,
	".json":     kindJSON,
	".html":     kindHTML,
	".htm":      kindHTML,
	".md":       kindMarkdown,
	".markdown": kindMarkdown,
	".docx":     kindDOCX,
	".pptx":     kindPPTX,
}

var kindSource = map[inputKind]string{
	kindDOCX: ingest.SourceDOCX,
	kindPPTX: ingest.SourcePPTX,
}

// docxTableName names the n-th (0-based) table of a DOCX document.
func docxTableName(n int) string {
	return "Table " + strconv.Itoa(n+1)
}

// CanConvert returns true when the file extension can be loaded.
func CanConvert(filePath string) bool {
	_, ok := inputExts[strings.ToLower(filepath.Ext(filePath))]
	return ok
}

// SupportedFormats returns loadable extensions without the leading dot, in
// sorted order.
func SupportedFormats() []string {
	out := make([]string, 0, len(inputExts))
	for ext := range inputExts {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(out)
	return out
}

// IsWorkbook reports whether filePath names a spreadsheet workbook.
func IsWorkbook(filePath string) bool {
	kind, ok := inputExts[strings.ToLower(filepath.Ext(filePath))]
	return ok && kind == kindWorkbook
}

// multiTable reports whether a kind holds several named tables.
func multiTable(k inputKind) bool {
	return k == kindWorkbook || k == kindDOCX || k == kindPPTX
}

// loadTables reads every table of a file. Single-table formats yield one entry
// named after the file.
func loadTables(filePath string, kind inputKind) ([]render.NamedGrid, error) {
	switch kind {
	case kindWorkbook:
		wb, err := ingest.OpenWorkbook(filePath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = wb.Close() }()

		names := wb.SheetNames()
		out := make([]render.NamedGrid, 0, len(names))
		for _, name := range names {
			g, err := wb.Sheet(name)
			if err != nil {
				return nil, err
			}
			out = append(out, render.NamedGrid{Name: name, Grid: g})
		}
		return out, nil

	case kindDOCX:
		tables, err := ingest.FromDOCX(filePath)
		if err != nil {
			return nil, err
		}
		out := make([]render.NamedGrid, len(tables))
		for i, g := range tables {
			out[i] = render.NamedGrid{Name: docxTableName(i), Grid: g}
		}
		return out, nil

	case kindPPTX:
		tables, err := ingest.FromPPTX(filePath)
		if err != nil {
			return nil, err
		}
		out := make([]render.NamedGrid, len(tables))
		for i, t := range tables {
			out[i] = render.NamedGrid{Name: t.Name(), Grid: t.Grid}
		}
		return out, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	g, err := parseSingle(data, kind)
	if err != nil {
		return nil, err
	}
	return []render.NamedGrid{{Name: filepath.Base(filePath), Grid: g}}, nil
}

// loadSheet reads one table of a file. An empty sheet name picks the first.
func loadSheet(filePath string, kind inputKind, sheet string) (string, grid.Grid, error) {
	switch kind {
	case kindWorkbook:
		wb, err := ingest.OpenWorkbook(filePath)
		if err != nil {
			return "", nil, err
		}
		defer func() { _ = wb.Close() }()
		if sheet == "" {
			return wb.First()
		}
		g, err := wb.Sheet(sheet)
		return sheet, g, err

	case kindDOCX, kindPPTX:
		tables, err := loadTables(filePath, kind)
		if err != nil {
			return "", nil, err
		}
		if len(tables) == 0 {
			return "", nil, grid.NewIngestError(kindSource[kind], fmt.Errorf("no tables in %s", filePath))
		}
		if sheet == "" {
			return tables[0].Name, tables[0].Grid, nil
		}
		for _, t := range tables {
			if t.Name == sheet {
				return t.Name, t.Grid, nil
			}
		}
		return "", nil, grid.NewIngestError(kindSource[kind], fmt.Errorf("table %q not found in %s", sheet, filePath))
	}

	if sheet != "" {
		return "", nil, fmt.Errorf("%s holds a single table; sheet %q cannot be selected", filepath.Base(filePath), sheet)
	}
	tables, err := loadTables(filePath, kind)
	if err != nil {
		return "", nil, err
	}
	return "", tables[0].Grid, nil
}

func parseSingle(data []byte, kind inputKind) (grid.Grid, error) {
	switch kind {
	case kindCSV:
		return ingest.FromCSV(bytes.NewReader(data), ',')
	case kindTSV:
		return ingest.FromCSV(bytes.NewReader(data), '\t')
	case kindJSON:
		return ingest.FromJSON(bytes.NewReader(data))
	case kindHTML:
		return ingest.FromHTML(string(data), false)
	case kindMarkdown:
		return ingest.FromMarkdown(data)
	default:
		return nil, fmt.Errorf("unhandled input kind %d", kind)
	}
}

// contentKinds maps response media types to the ingest source used for them.
var contentKinds = map[string]inputKind{
	"text/html":                 kindHTML,
	"application/xhtml+xml":     kindHTML,
	"text/csv":                  kindCSV,
	"text/tab-separated-values": kindTSV,
	"application/json":          kindJSON,
	"text/markdown":             kindMarkdown,
}

// fetchURL downloads an HTTP/HTTPS resource, at most maxBytes long, and reads
// its first table. The response media type picks the parser; anything
// unrecognized is treated as HTML.
func fetchURL(ctx context.Context, client *http.Client, url string, maxBytes int64) (grid.Grid, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w: response from %s is more than %d bytes", ErrTooLarge, url, maxBytes)
	}

	kind := kindHTML
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		if k, ok := contentKinds[mt]; ok {
			kind = k
		}
	}
	return parseSingle(body, kind)
}
