// Package render serializes a grid.Grid into Markdown, CSV, JSON or HTML text.
//
// Every renderer is a pure function of (grid, FormatConfig): no I/O, no shared
// state, and an empty grid always renders as "".
package render

import (
	"fmt"
	"strings"
)

// Format selects the output syntax.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats lists every supported output format in display order.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatCSV, FormatJSON, FormatHTML}
}

// Alignment is the Markdown column alignment written into the separator row.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// FormatConfig controls how a grid is rendered. Only OutputFormat and the HTML
// escaping switch apply to non-Markdown targets.
type FormatConfig struct {
	// Alignment of every Markdown column.
	Alignment Alignment `json:"alignment" yaml:"alignment"`
	// BoldHeader wraps non-empty header cells in **…**.
	BoldHeader bool `json:"boldHeader" yaml:"bold_header"`
	// BoldFirstColumn wraps non-empty first-column body cells in **…**.
	BoldFirstColumn bool `json:"boldFirstColumn" yaml:"bold_first_column"`
	// ShowRowNumbers prepends a "#" column numbering body rows from 1.
	ShowRowNumbers bool `json:"showRowNumbers" yaml:"show_row_numbers"`
	// PrettyPrint pads Markdown cells so columns line up in monospace text.
	PrettyPrint bool `json:"prettyPrint" yaml:"pretty_print"`
	// OutputFormat picks the target syntax. Unknown values render as Markdown.
	OutputFormat Format `json:"outputFormat" yaml:"output_format"`
	// RawHTML disables escaping of cell text in the HTML target.
	RawHTML bool `json:"rawHTML,omitempty" yaml:"raw_html,omitempty"`
	// DisplayWidth measures pretty-print widths in terminal columns instead of
	// runes, so wide (CJK, emoji) cells line up too.
	DisplayWidth bool `json:"displayWidth,omitempty" yaml:"display_width,omitempty"`
}

// DefaultFormatConfig returns left-aligned, pretty-printed Markdown with a bold
// header.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{
		Alignment:    AlignLeft,
		BoldHeader:   true,
		PrettyPrint:  true,
		OutputFormat: FormatMarkdown,
	}
}

// ParseFormat validates a user-supplied format name. "md" is accepted as an
// alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatCSV, FormatJSON, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected markdown, csv, json or html)", s)
	}
}

// ParseAlignment validates a user-supplied alignment name.
func ParseAlignment(s string) (Alignment, error) {
	switch a := Alignment(strings.ToLower(strings.TrimSpace(s))); a {
	case AlignLeft, AlignCenter, AlignRight:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported alignment %q (expected left, center or right)", s)
	}
}
