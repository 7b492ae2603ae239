package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Cortexa-LLC/mcp/src/gridmd/config"
	"github.com/Cortexa-LLC/mcp/src/gridmd/converter"
	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/Cortexa-LLC/mcp/src/gridmd/httpapi"
	"github.com/Cortexa-LLC/mcp/src/gridmd/ingest"
	"github.com/Cortexa-LLC/mcp/src/gridmd/logging"
	"github.com/Cortexa-LLC/mcp/src/gridmd/render"
	"github.com/Cortexa-LLC/mcp/src/gridmd/session"
)

// formatXLSX is accepted by convert and paste in addition to the text formats.
const formatXLSX = "xlsx"

// renderFlags are the output flags shared by convert and paste.
type renderFlags struct {
	preset          string
	format          string
	alignment       string
	boldHeader      bool
	boldFirstColumn bool
	rowNumbers      bool
	pretty          bool
	rawHTML         bool
	displayWidth    bool
	ops             string
	filter          string
	output          string
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.preset, "preset", config.PresetDefault, "Named rendering preset")
	fs.StringVarP(&f.format, "format", "f", "", "Output format: markdown, csv, json, html or xlsx")
	fs.StringVar(&f.alignment, "alignment", "", "Markdown column alignment: left, center or right")
	fs.BoolVar(&f.boldHeader, "bold-header", false, "Bold the Markdown header row")
	fs.BoolVar(&f.boldFirstColumn, "bold-first-column", false, "Bold the first Markdown column")
	fs.BoolVar(&f.rowNumbers, "row-numbers", false, "Prepend a # column numbering body rows")
	fs.BoolVar(&f.pretty, "pretty", false, "Pad Markdown cells so columns line up")
	fs.BoolVar(&f.rawHTML, "raw-html", false, "Do not HTML-escape cell text in HTML output")
	fs.BoolVar(&f.displayWidth, "display-width", false, "Measure padding in terminal columns")
	fs.StringVar(&f.ops, "ops", "", `JSON array of edit operations, e.g. '[{"op":"transpose"}]'`)
	fs.StringVar(&f.filter, "filter", "", "Only output the header and rows containing this text (case-insensitive)")
	fs.StringVarP(&f.output, "output", "o", "", "Output file path (default: stdout)")
}

// formatConfig resolves the preset and applies the flags the user set.
func (f *renderFlags) formatConfig(fs *pflag.FlagSet, presets config.Presets) (render.FormatConfig, error) {
	cfg, err := presets.Get(f.preset)
	if err != nil {
		return cfg, err
	}
	if f.format != "" && !f.xlsx() {
		if cfg.OutputFormat, err = render.ParseFormat(f.format); err != nil {
			return cfg, err
		}
	}
	if f.alignment != "" {
		if cfg.Alignment, err = render.ParseAlignment(f.alignment); err != nil {
			return cfg, err
		}
	}
	for name, pair := range map[string][2]*bool{
		"bold-header":       {&cfg.BoldHeader, &f.boldHeader},
		"bold-first-column": {&cfg.BoldFirstColumn, &f.boldFirstColumn},
		"row-numbers":       {&cfg.ShowRowNumbers, &f.rowNumbers},
		"pretty":            {&cfg.PrettyPrint, &f.pretty},
		"raw-html":          {&cfg.RawHTML, &f.rawHTML},
		"display-width":     {&cfg.DisplayWidth, &f.displayWidth},
	} {
		if fs.Changed(name) {
			*pair[0] = *pair[1]
		}
	}
	return cfg, nil
}

func (f *renderFlags) xlsx() bool {
	return strings.EqualFold(strings.TrimSpace(f.format), formatXLSX)
}

func (f *renderFlags) parseOps() ([]grid.Op, error) {
	if strings.TrimSpace(f.ops) == "" {
		return nil, nil
	}
	var ops []grid.Op
	if err := json.Unmarshal([]byte(f.ops), &ops); err != nil {
		return nil, fmt.Errorf("--ops must be a JSON array of operations: %w", err)
	}
	return ops, nil
}

// write sends the rows matching --filter to --output or the command's stdout.
func (f *renderFlags) write(cmd *cobra.Command, g grid.Grid, sheet string, cfg render.FormatConfig) error {
	g = g.Filter(f.filter)
	out := cmd.OutOrStdout()
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}
	if f.xlsx() {
		if f.output == "" {
			return errors.New("--format xlsx requires --output")
		}
		return render.WriteXLSX(out, g, sheet)
	}
	return writeText(out, render.Render(g, cfg))
}

func writeText(w io.Writer, s string) error {
	if s == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, s)
	return err
}

// newRootCmd builds the command tree. envFile names the .env file loaded at
// startup, if any; it is logged once logging is configured.
func newRootCmd(envFile string) *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:   "gridmd",
		Short: "Convert and edit tables",
		Long: `gridmd reads tables from spreadsheets (XLSX, XLSM), documents (DOCX, PPTX),
CSV, TSV, JSON, HTML and Markdown, applies edit operations, and writes
Markdown, CSV, JSON, HTML or XLSX.

Examples:
  gridmd convert report.xlsx --sheet Q3 --alignment center
  gridmd convert data.csv -f json --ops '[{"op":"removeDuplicateRows"}]'
  pbpaste | gridmd paste --row-numbers
  gridmd serve --addr :8080`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
			if envFile != "" {
				slog.Debug("loaded env file", "path", envFile)
			}
		},
	}
	root.AddCommand(
		newConvertCmd(cfg),
		newSheetsCmd(cfg),
		newPasteCmd(cfg),
		newServeCmd(cfg),
	)
	return root
}

func newConvertCmd(cfg *config.Config) *cobra.Command {
	var (
		rf        renderFlags
		sheet     string
		allSheets bool
	)
	cmd := &cobra.Command{
		Use:   "convert FILE|URL",
		Short: "Convert a table file or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := cfg.Presets()
			if err != nil {
				return err
			}
			format, err := rf.formatConfig(cmd.Flags(), presets)
			if err != nil {
				return err
			}
			ops, err := rf.parseOps()
			if err != nil {
				return err
			}
			conv := converter.NewConverter(cfg)

			if !rf.xlsx() {
				out, err := conv.ConvertURI(cmd.Context(), args[0], converter.Options{
					Format:    format,
					Sheet:     sheet,
					AllSheets: allSheets,
					Ops:       ops,
					Filter:    rf.filter,
				})
				if err != nil {
					return err
				}
				return rf.writeString(cmd, out)
			}

			tbl, err := conv.LoadURI(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			g, err := grid.Apply(tbl.Grid, ops...)
			if err != nil {
				return err
			}
			return rf.write(cmd, g, tbl.Sheet, format)
		},
	}
	rf.register(cmd.Flags())
	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet or document table name (default: first)")
	cmd.Flags().BoolVar(&allSheets, "all-sheets", false, "Render every sheet as Markdown under ## headings")
	return cmd
}

// writeString sends already rendered text to --output or stdout.
func (f *renderFlags) writeString(cmd *cobra.Command, s string) error {
	if f.output == "" {
		return writeText(cmd.OutOrStdout(), s)
	}
	if err := os.WriteFile(f.output, []byte(s), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func newSheetsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets FILE",
		Short: "List workbook sheets or document tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := converter.NewConverter(cfg).Sheets(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newPasteCmd(cfg *config.Config) *cobra.Command {
	var rf renderFlags
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Convert tab-separated text read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets, err := cfg.Presets()
			if err != nil {
				return err
			}
			format, err := rf.formatConfig(cmd.Flags(), presets)
			if err != nil {
				return err
			}
			ops, err := rf.parseOps()
			if err != nil {
				return err
			}
			data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), cfg.MaxFileSizeBytes))
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			g, err := ingest.FromPastedText(string(data))
			if err != nil {
				return err
			}
			if g, err = grid.Apply(g, ops...); err != nil {
				return err
			}
			return rf.write(cmd, g, "", format)
		},
	}
	rf.register(cmd.Flags())
	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP table editing API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets, err := cfg.Presets()
			if err != nil {
				return err
			}
			srv := httpapi.NewServer(cfg, converter.NewConverter(cfg), session.NewStore(), presets)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", cfg.HTTPAddr, "Listen address")
	return cmd
}
