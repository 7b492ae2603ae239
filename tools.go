package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Cortexa-LLC/mcp/src/gridmd/config"
	"github.com/Cortexa-LLC/mcp/src/gridmd/converter"
	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/Cortexa-LLC/mcp/src/gridmd/ingest"
	"github.com/Cortexa-LLC/mcp/src/gridmd/render"
	"github.com/Cortexa-LLC/mcp/src/gridmd/session"
)

// MCP tool parameter key constants, shared between schema definitions and
// argument extraction so a typo in one place is caught by the other.
const (
	argURI             = "uri"
	argPath            = "path"
	argText            = "text"
	argSource          = "source"
	argSession         = "session_id"
	argSheet           = "sheet"
	argAllSheets       = "all_sheets"
	argOps             = "ops"
	argPreset          = "preset"
	argFormat          = "format"
	argAlignment       = "alignment"
	argBoldHeader      = "bold_header"
	argBoldFirstColumn = "bold_first_column"
	argRowNumbers      = "row_numbers"
	argPretty          = "pretty"
	argRawHTML         = "raw_html"
	argDisplayWidth    = "display_width"
	argFilter          = "filter"
)

// toolset holds the state shared by tool handlers. The session store owns
// every grid that outlives a single call.
type toolset struct {
	conv    converter.FileConverter
	store   *session.Store
	presets config.Presets
}

// formatOptions are the rendering parameters shared by convert_table and
// render_table.
func formatOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString(argPreset,
			mcp.Description("Named rendering preset to start from (default: \"default\")"),
		),
		mcp.WithString(argFormat,
			mcp.Description("Output format"),
			mcp.Enum("markdown", "csv", "json", "html"),
		),
		mcp.WithString(argAlignment,
			mcp.Description("Markdown column alignment"),
			mcp.Enum("left", "center", "right"),
		),
		mcp.WithBoolean(argBoldHeader, mcp.Description("Bold the Markdown header row")),
		mcp.WithBoolean(argBoldFirstColumn, mcp.Description("Bold the first Markdown column")),
		mcp.WithBoolean(argRowNumbers, mcp.Description("Prepend a # column numbering body rows")),
		mcp.WithBoolean(argPretty, mcp.Description("Pad Markdown cells so columns line up")),
		mcp.WithBoolean(argRawHTML, mcp.Description("Do not HTML-escape cell text in HTML output")),
		mcp.WithBoolean(argDisplayWidth, mcp.Description("Measure padding in terminal columns (CJK, emoji)")),
		mcp.WithString(argFilter,
			mcp.Description("Only render the header and rows containing this text (case-insensitive)"),
		),
	}
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString(argSession,
		mcp.Required(),
		mcp.Description("Session id returned by paste_table or load_table"),
	)
}

// registerTools binds MCP tool definitions to their handlers.
func registerTools(s *server.MCPServer, t *toolset) {
	// convert_table: one-shot file or URL conversion
	s.AddTool(
		mcp.NewTool("convert_table", append([]mcp.ToolOption{
			mcp.WithDescription("Convert the table in a file or URL to Markdown, CSV, JSON or HTML. " +
				"Pass an absolute file path, a file:// URI or an http:// / https:// URL. " +
				"Inputs: XLSX, XLSM, CSV, TSV, JSON, HTML, Markdown, DOCX and PPTX tables."),
			mcp.WithString(argURI,
				mcp.Required(),
				mcp.Description("Absolute file path or file/http/https URI"),
			),
			mcp.WithString(argSheet, mcp.Description("Workbook sheet or document table name (default: first)")),
			mcp.WithBoolean(argAllSheets, mcp.Description("Render every sheet as Markdown under ## headings")),
			mcp.WithString(argOps, mcp.Description("JSON array of edit operations applied before rendering")),
		}, formatOptions()...)...),
		t.convertTable,
	)

	// paste_table: start or replace a session from pasted TSV
	s.AddTool(
		mcp.NewTool("paste_table",
			mcp.WithDescription("Load tab-separated text (as copied from a spreadsheet) into an editing session. "+
				"Returns the session id and the grid. Whitespace-only text leaves an existing session unchanged."),
			mcp.WithString(argText, mcp.Required(), mcp.Description("Rows separated by newlines, cells by tabs")),
			mcp.WithString(argSession, mcp.Description("Existing session to replace (default: new session)")),
			mcp.WithString(argSource, mcp.Description("Name used for download file names")),
		),
		t.pasteTable,
	)

	// load_table: start or replace a session from a file or URL
	s.AddTool(
		mcp.NewTool("load_table",
			mcp.WithDescription("Load a table from a file or URL into an editing session."),
			mcp.WithString(argURI, mcp.Required(), mcp.Description("Absolute file path or file/http/https URI")),
			mcp.WithString(argSheet, mcp.Description("Workbook sheet or document table name (default: first)")),
			mcp.WithString(argSession, mcp.Description("Existing session to replace (default: new session)")),
		),
		t.loadTable,
	)

	// edit_table: apply edit operations atomically
	s.AddTool(
		mcp.NewTool("edit_table",
			mcp.WithDescription("Apply edit operations to a session's grid, in order. Either all succeed or "+
				"the grid is left unchanged. Operations: "+strings.Join(grid.OpNames(), ", ")+". "+
				`Example: [{"op":"sortByColumn","index":1},{"op":"searchReplace","query":"a+","replacement":"b","regex":true}]`),
			sessionParam(),
			mcp.WithString(argOps, mcp.Required(), mcp.Description("JSON array of edit operations")),
		),
		t.editTable,
	)

	// render_table: serialize a session's grid
	s.AddTool(
		mcp.NewTool("render_table", append([]mcp.ToolOption{
			mcp.WithDescription("Render a session's grid as Markdown, CSV, JSON or HTML."),
			sessionParam(),
		}, formatOptions()...)...),
		t.renderTable,
	)

	// reset_table: drop a session's grid
	s.AddTool(
		mcp.NewTool("reset_table",
			mcp.WithDescription("Clear a session's grid."),
			sessionParam(),
		),
		t.resetTable,
	)

	// list_sheets: sheet names of a workbook or tables of a document
	s.AddTool(
		mcp.NewTool("list_sheets",
			mcp.WithDescription("List the sheets of an XLSX/XLSM workbook or the tables of a DOCX/PPTX file."),
			mcp.WithString(argPath, mcp.Required(), mcp.Description("Absolute file path")),
		),
		t.listSheets,
	)

	// get_conversion_info: list formats and configuration
	s.AddTool(
		mcp.NewTool("get_conversion_info",
			mcp.WithDescription("Return supported input/output formats, edit operations, presets and active configuration."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(t.conv.GetConversionInfo(ctx)), nil
		},
	)
}

func (t *toolset) convertTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	uri := stringArg(args, argURI)
	if uri == "" {
		return mcp.NewToolResultError(argURI + " is required"), nil
	}
	cfg, err := t.formatFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ops, err := opsArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := t.conv.ConvertURI(ctx, uri, converter.Options{
		Format:    cfg,
		Sheet:     stringArg(args, argSheet),
		AllSheets: boolArg(args, argAllSheets),
		Ops:       ops,
		Filter:    filterArg(args),
	})
	if err != nil {
		logToolError("convert_table", err, "uri", uri)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (t *toolset) pasteTable(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	text, ok := args[argText].(string)
	if !ok {
		return mcp.NewToolResultError(argText + " is required"), nil
	}
	g, err := ingest.FromPastedText(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.saveGrid(stringArg(args, argSession), g, stringArg(args, argSource))
}

func (t *toolset) loadTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	uri := stringArg(args, argURI)
	if uri == "" {
		return mcp.NewToolResultError(argURI + " is required"), nil
	}
	tbl, err := t.conv.LoadURI(ctx, uri, stringArg(args, argSheet))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.saveGrid(stringArg(args, argSession), tbl.Grid, tbl.Source)
}

// saveGrid creates a session for g, or replaces the grid of session id. An empty
// grid never replaces existing data.
func (t *toolset) saveGrid(id string, g grid.Grid, source string) (*mcp.CallToolResult, error) {
	var (
		sess session.Session
		err  error
	)
	switch {
	case id == "":
		sess = t.store.Create(g, source)
		slog.Info("session created", "session", sess.ID, "rows", sess.Rows)
	case len(g) == 0:
		sess, err = t.store.Get(id)
	default:
		sess, err = t.store.Replace(id, g, source)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return sessionResult(sess)
}

func (t *toolset) editTable(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	id := stringArg(args, argSession)
	if id == "" {
		return mcp.NewToolResultError(argSession + " is required"), nil
	}
	ops, err := opsArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ops) == 0 {
		return mcp.NewToolResultError(argOps + " must list at least one operation"), nil
	}
	sess, err := t.store.Apply(id, ops...)
	if err != nil {
		logToolError("edit_table", err, "session", id)
		return mcp.NewToolResultError(err.Error()), nil
	}
	slog.Info("ops applied", "session", id, "count", len(ops))
	return sessionResult(sess)
}

func (t *toolset) renderTable(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	sess, err := t.store.Get(stringArg(args, argSession))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := t.formatFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(render.Render(sess.Grid.Filter(filterArg(args)), cfg)), nil
}

func (t *toolset) resetTable(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := t.store.Reset(stringArg(req.Params.Arguments, argSession))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return sessionResult(sess)
}

func (t *toolset) listSheets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := stringArg(req.Params.Arguments, argPath)
	if path == "" {
		return mcp.NewToolResultError(argPath + " is required"), nil
	}
	names, err := t.conv.Sheets(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

// logToolError logs caller mistakes at debug level and everything else as
// an error.
func logToolError(tool string, err error, args ...any) {
	args = append([]any{"tool", tool, "error", err}, args...)
	if grid.IsUserError(err) {
		slog.Debug("tool call rejected", args...)
		return
	}
	slog.Error("tool call failed", args...)
}

func sessionResult(sess session.Session) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// formatFromArgs starts from the named preset and applies explicit overrides.
func (t *toolset) formatFromArgs(args map[string]interface{}) (render.FormatConfig, error) {
	name := stringArg(args, argPreset)
	if name == "" {
		name = config.PresetDefault
	}
	cfg, err := t.presets.Get(name)
	if err != nil {
		return cfg, err
	}
	if v := stringArg(args, argFormat); v != "" {
		if cfg.OutputFormat, err = render.ParseFormat(v); err != nil {
			return cfg, err
		}
	}
	if v := stringArg(args, argAlignment); v != "" {
		if cfg.Alignment, err = render.ParseAlignment(v); err != nil {
			return cfg, err
		}
	}
	for key, dst := range map[string]*bool{
		argBoldHeader:      &cfg.BoldHeader,
		argBoldFirstColumn: &cfg.BoldFirstColumn,
		argRowNumbers:      &cfg.ShowRowNumbers,
		argPretty:          &cfg.PrettyPrint,
		argRawHTML:         &cfg.RawHTML,
		argDisplayWidth:    &cfg.DisplayWidth,
	} {
		if v, ok := args[key].(bool); ok {
			*dst = v
		}
	}
	return cfg, nil
}

// opsArg decodes the ops argument, given either as a JSON string or as an
// already decoded array.
func opsArg(args map[string]interface{}) ([]grid.Op, error) {
	raw, ok := args[argOps]
	if !ok || raw == nil {
		return nil, nil
	}
	var data []byte
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", argOps, err)
		}
		data = b
	}
	var ops []grid.Op
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("%s must be a JSON array of operations: %w", argOps, err)
	}
	for i, op := range ops {
		if op.Name == "" {
			return nil, errors.New(argOps + "[" + fmt.Sprint(i) + "]: missing \"op\"")
		}
	}
	return ops, nil
}

// filterArg returns the row filter untrimmed; surrounding spaces are part of
// the text searched for.
func filterArg(args map[string]interface{}) string {
	s, _ := args[argFilter].(string)
	return s
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func boolArg(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}
