// Package converter is the file-level facade: it loads a table from a path or
// URI, applies edit operations and renders the result.
package converter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cortexa-LLC/mcp/src/gridmd/config"
	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/Cortexa-LLC/mcp/src/gridmd/render"
)

const fetchTimeout = 30 * time.Second

// ErrTooLarge is returned when a file or fetched resource exceeds the
// configured size limit.
var ErrTooLarge = errors.New("input too large")

// FileConverter is the surface the MCP tools and HTTP API depend on, so tests
// can inject a fake.
type FileConverter interface {
	LoadFile(ctx context.Context, filePath, sheet string) (Table, error)
	LoadURI(ctx context.Context, uri, sheet string) (Table, error)
	Sheets(ctx context.Context, filePath string) ([]string, error)
	ConvertURI(ctx context.Context, uri string, opts Options) (string, error)
	GetConversionInfo(ctx context.Context) string
}

// Options control a one-shot conversion.
type Options struct {
	Format render.FormatConfig
	// Sheet selects a workbook sheet or DOCX table; empty means the first.
	Sheet string
	// AllSheets renders every sheet as Markdown under "## name" headings.
	// It applies only when Sheet is empty.
	AllSheets bool
	// Ops are applied, in order, before rendering.
	Ops []grid.Op
	// Filter keeps the header plus the body rows containing it in any cell,
	// case-insensitively. It narrows the rendered view only.
	Filter string
}

// Table is a loaded grid together with where it came from.
type Table struct {
	Source string    `json:"source"`
	Sheet  string    `json:"sheet,omitempty"`
	Grid   grid.Grid `json:"grid"`
}

// Converter loads local files and HTTP/HTTPS resources.
// file:// URIs are resolved to local paths.
type Converter struct {
	cfg    *config.Config
	client *http.Client
}

// NewConverter creates a Converter. A nil cfg loads environment-driven config.
func NewConverter(cfg *config.Config) *Converter {
	if cfg == nil {
		cfg = config.Load()
	}
	return &Converter{
		cfg:    cfg,
		client: &http.Client{Timeout: fetchTimeout},
	}
}

func (c *Converter) check(filePath string) (inputKind, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", filePath)
	}
	if info.Size() > c.cfg.MaxFileSizeBytes {
		return 0, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrTooLarge, filepath.Base(filePath), info.Size(), c.cfg.MaxFileSizeBytes)
	}
	kind, ok := inputExts[strings.ToLower(filepath.Ext(filePath))]
	if !ok {
		return 0, fmt.Errorf("unsupported format: %s", filePath)
	}
	return kind, nil
}

// LoadFile reads one table from a local file.
func (c *Converter) LoadFile(_ context.Context, filePath, sheet string) (Table, error) {
	kind, err := c.check(filePath)
	if err != nil {
		return Table{}, err
	}
	name, g, err := loadSheet(filePath, kind, sheet)
	if err != nil {
		return Table{}, err
	}
	return Table{Source: filePath, Sheet: name, Grid: g}, nil
}

// LoadURI reads one table from a file://, http:// or https:// URI, or from a
// bare local path.
func (c *Converter) LoadURI(ctx context.Context, uri, sheet string) (Table, error) {
	u, err := parseURI(uri)
	if err != nil {
		return Table{}, err
	}
	switch u.Scheme {
	case "":
		return c.LoadFile(ctx, uri, sheet)
	case "file":
		return c.LoadFile(ctx, u.Path, sheet)
	case "http", "https":
		if sheet != "" {
			return Table{}, fmt.Errorf("sheet selection is not supported for %s", u.Scheme)
		}
		g, err := fetchURL(ctx, c.client, uri, c.cfg.MaxFileSizeBytes)
		if err != nil {
			return Table{}, err
		}
		return Table{Source: uri, Grid: g}, nil
	default:
		return Table{}, fmt.Errorf("unsupported URI scheme: %q (expected file, http, or https)", u.Scheme)
	}
}

func parseURI(uri string) (*url.URL, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid URI: %s", uri)
	}
	return u, nil
}

// Sheets lists the sheet (or DOCX table) names of a multi-table file.
func (c *Converter) Sheets(_ context.Context, filePath string) ([]string, error) {
	kind, err := c.check(filePath)
	if err != nil {
		return nil, err
	}
	if !multiTable(kind) {
		return nil, fmt.Errorf("%s holds a single table", filepath.Base(filePath))
	}
	tables, err := loadTables(filePath, kind)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names, nil
}

// ConvertFile loads filePath, applies opts.Ops and renders with opts.Format.
func (c *Converter) ConvertFile(ctx context.Context, filePath string, opts Options) (string, error) {
	if opts.AllSheets && opts.Sheet == "" {
		return c.convertAll(filePath, opts)
	}
	t, err := c.LoadFile(ctx, filePath, opts.Sheet)
	if err != nil {
		return "", err
	}
	return renderTable(t.Grid, opts)
}

// ConvertURI is ConvertFile for file://, http:// and https:// URIs.
func (c *Converter) ConvertURI(ctx context.Context, uri string, opts Options) (string, error) {
	u, err := parseURI(uri)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "":
		return c.ConvertFile(ctx, uri, opts)
	case "file":
		return c.ConvertFile(ctx, u.Path, opts)
	}
	t, err := c.LoadURI(ctx, uri, opts.Sheet)
	if err != nil {
		return "", err
	}
	return renderTable(t.Grid, opts)
}

func renderTable(g grid.Grid, opts Options) (string, error) {
	g, err := grid.Apply(g, opts.Ops...)
	if err != nil {
		return "", err
	}
	return render.Render(g.Filter(opts.Filter), opts.Format), nil
}

func (c *Converter) convertAll(filePath string, opts Options) (string, error) {
	kind, err := c.check(filePath)
	if err != nil {
		return "", err
	}
	tables, err := loadTables(filePath, kind)
	if err != nil {
		return "", err
	}
	for i := range tables {
		g, err := grid.Apply(tables[i].Grid, opts.Ops...)
		if err != nil {
			return "", fmt.Errorf("sheet %q: %w", tables[i].Name, err)
		}
		tables[i].Grid = g.Filter(opts.Filter)
	}
	return render.Workbook(tables), nil
}

// GetConversionInfo returns a Markdown summary of supported formats, edit
// operations and configuration.
func (c *Converter) GetConversionInfo(_ context.Context) string {
	in := SupportedFormats()

	out := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		out = append(out, fmt.Sprintf("%s (.%s, %s)", f, render.Extension(f), render.MIMEType(f)))
	}

	presets := "- (unavailable)"
	if p, err := c.cfg.Presets(); err == nil {
		presets = "- " + strings.Join(p.Names(), "\n- ")
	}

	return fmt.Sprintf(`# gridmd Conversion Info

## Input Formats
%s

## Output Formats
%s

## Edit Operations
%s

## Presets
%s

## Configuration
- Max file size: %d MB`,
		"- "+strings.Join(in, "\n- "),
		"- "+strings.Join(out, "\n- "),
		"- "+strings.Join(grid.OpNames(), "\n- "),
		presets,
		c.cfg.MaxFileSizeMB(),
	)
}
