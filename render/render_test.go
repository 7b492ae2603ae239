package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

func plain() FormatConfig {
	return FormatConfig{Alignment: AlignLeft, OutputFormat: FormatMarkdown}
}

func TestRender_EmptyGridIsEmptyForEveryFormat(t *testing.T) {
	for _, f := range Formats() {
		cfg := DefaultFormatConfig()
		cfg.OutputFormat = f
		assert.Equalf(t, "", Render(grid.Grid{}, cfg), "format %s", f)
		assert.Equalf(t, "", Render(nil, cfg), "format %s", f)
	}
}

func TestRender_UnknownFormatFallsBackToMarkdown(t *testing.T) {
	g := grid.Grid{{"a"}, {"b"}}
	cfg := plain()
	cfg.OutputFormat = "yaml"
	assert.Equal(t, Markdown(g, cfg), Render(g, cfg))
}

func TestMarkdown_Plain(t *testing.T) {
	g := grid.Grid{{"a", "b"}, {"1", "2"}}
	assert.Equal(t, "| a | b |\n| :--- | :--- |\n| 1 | 2 |", Markdown(g, plain()))
}

func TestMarkdown_PrettyPrintPadsColumns(t *testing.T) {
	cfg := plain()
	cfg.PrettyPrint = true
	got := Markdown(grid.Grid{{"a", "bb"}, {"ccc", "d"}}, cfg)
	want := "| a    | bb   |\n" +
		"| :--- | :--- |\n" +
		"| ccc  | d    |"
	assert.Equal(t, want, got)
}

func TestMarkdown_EscapesPipesAndNewlines(t *testing.T) {
	got := Markdown(grid.Grid{{"h"}, {"a|b\nc\r\nd"}}, plain())
	assert.Equal(t, "| h |\n| :--- |\n| a\\|b<br>c<br>d |", got)
}

func TestMarkdown_Alignment(t *testing.T) {
	cases := []struct {
		align Alignment
		sep   string
	}{
		{AlignLeft, ":---"},
		{AlignCenter, ":---:"},
		{AlignRight, "---:"},
		{"diagonal", "---"},
	}
	for _, tc := range cases {
		cfg := plain()
		cfg.Alignment = tc.align
		got := Markdown(grid.Grid{{"x"}}, cfg)
		assert.Equal(t, "| x |\n| "+tc.sep+" |", got)
	}
}

func TestMarkdown_BoldSkipsEmptyCells(t *testing.T) {
	cfg := plain()
	cfg.BoldHeader = true
	cfg.BoldFirstColumn = true
	got := Markdown(grid.Grid{{"h", ""}, {"v", "w"}, {"", "z"}}, cfg)
	want := "| **h** |  |\n" +
		"| :--- | :--- |\n" +
		"| **v** | w |\n" +
		"|  | z |"
	assert.Equal(t, want, got)
}

func TestMarkdown_RowNumbers(t *testing.T) {
	cfg := plain()
	cfg.ShowRowNumbers = true
	got := Markdown(grid.Grid{{"h"}, {"a"}, {"b"}}, cfg)
	want := "| # | h |\n" +
		"| --- | :--- |\n" +
		"| 1 | a |\n" +
		"| 2 | b |"
	assert.Equal(t, want, got)
}

func TestMarkdown_RaggedRowsArePadded(t *testing.T) {
	got := Markdown(grid.Grid{{"a"}, {"1", "2", "3"}}, plain())
	assert.Equal(t, "| a |  |  |\n| :--- | :--- | :--- |\n| 1 | 2 | 3 |", got)
}

func TestMarkdown_DisplayWidth(t *testing.T) {
	cfg := plain()
	cfg.PrettyPrint = true
	cfg.DisplayWidth = true
	got := Markdown(grid.Grid{{"日本"}, {"ab"}}, cfg)
	assert.Equal(t, "| 日本 |\n| :--- |\n| ab   |", got)
}

func TestMarkdown_ParsesAsGFMTable(t *testing.T) {
	g := grid.Grid{{"name", "note"}, {"x", "a|b"}, {"y", "<i>"}}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var out bytes.Buffer
	require.NoError(t, md.Convert([]byte(Markdown(g, DefaultFormatConfig())), &out))
	html := out.String()
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<strong>name</strong>")
	assert.Contains(t, html, ">a|b</td>")
}

func TestCSV_QuotesEveryCell(t *testing.T) {
	got := CSV(grid.Grid{{"a", `b"c`}, {"1"}})
	assert.Equal(t, "\"a\",\"b\"\"c\"\n\"1\",\"\"", got)
}

func TestJSON_KeysFollowHeader(t *testing.T) {
	got := JSON(grid.Grid{{"name", ""}, {"x", "1"}, {"y"}})
	want := "[\n" +
		"  {\n" +
		"    \"name\": \"x\",\n" +
		"    \"col_2\": \"1\"\n" +
		"  },\n" +
		"  {\n" +
		"    \"name\": \"y\",\n" +
		"    \"col_2\": null\n" +
		"  }\n" +
		"]"
	assert.Equal(t, want, got)
}

func TestJSON_IsValidAndKeepsEmptyStrings(t *testing.T) {
	got := JSON(grid.Grid{{"a", "b"}, {"", "<&>"}})

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["a"])
	assert.Equal(t, "<&>", rows[0]["b"])
	assert.Contains(t, got, `"<&>"`)
}

func TestJSON_DuplicateHeaderLastValueWins(t *testing.T) {
	got := JSON(grid.Grid{{"k", "k"}, {"first", "second"}})
	assert.Equal(t, "[\n  {\n    \"k\": \"second\"\n  }\n]", got)
}

func TestJSON_HeaderOnly(t *testing.T) {
	assert.Equal(t, "[]", JSON(grid.Grid{{"a", "b"}}))
}

func TestHTML_EscapesByDefault(t *testing.T) {
	g := grid.Grid{{"h"}, {"<b>&"}}
	cfg := DefaultFormatConfig()
	cfg.OutputFormat = FormatHTML

	want := "<table border=\"1\">\n" +
		"<thead>\n" +
		"  <tr>\n" +
		"    <th>h</th>\n" +
		"  </tr>\n" +
		"</thead>\n" +
		"<tbody>\n" +
		"  <tr>\n" +
		"    <td>&lt;b&gt;&amp;</td>\n" +
		"  </tr>\n" +
		"</tbody>\n" +
		"</table>"
	assert.Equal(t, want, Render(g, cfg))

	cfg.RawHTML = true
	assert.Contains(t, Render(g, cfg), "<td><b>&</td>")
}

func TestDownloadName(t *testing.T) {
	cases := []struct {
		source string
		format Format
		want   string
	}{
		{"report.xlsx", FormatMarkdown, "report.md"},
		{"/tmp/data/report.v2.csv", FormatJSON, "report.v2.json"},
		{"", FormatCSV, "table.csv"},
		{".hidden", FormatHTML, "table.html"},
		{"noext", "bogus", "noext.md"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DownloadName(tc.source, tc.format), tc.source)
	}
	assert.Equal(t, "application/json; charset=utf-8", MIMEType(FormatJSON))
	assert.Equal(t, "text/markdown; charset=utf-8", MIMEType("bogus"))
}

func TestParseFormatAndAlignment(t *testing.T) {
	f, err := ParseFormat(" MD ")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)

	a, err := ParseAlignment("Right")
	require.NoError(t, err)
	assert.Equal(t, AlignRight, a)

	_, err = ParseAlignment("justify")
	assert.Error(t, err)
}

func TestWorkbook_SkipsEmptySheets(t *testing.T) {
	got := Workbook([]NamedGrid{
		{Name: "One", Grid: grid.Grid{{"a"}, {""}, {"b"}}},
		{Name: "Blank", Grid: grid.Grid{{" "}}},
		{Name: "Two", Grid: grid.Grid{{"c"}}},
	})
	want := "## One\n\n| a |\n| --- |\n| b |\n\n" +
		"## Two\n\n| c |\n| --- |\n\n"
	assert.Equal(t, want, got)
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	g := grid.Grid{{"name", "qty"}, {"apple", "3"}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, g, "Fruit"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Fruit"}, f.GetSheetList())
	rows, err := f.GetRows("Fruit")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "qty"}, {"apple", "3"}}, rows)
}

func TestWriteXLSX_InvalidSheetName(t *testing.T) {
	for _, name := range []string{"Q1/Q2", strings.Repeat("x", 32)} {
		var buf bytes.Buffer
		err := WriteXLSX(&buf, grid.Grid{{"a"}}, name)
		assert.Errorf(t, err, "sheet %q", name)
		assert.Zero(t, buf.Len())
	}
}

func TestMarkdown_RowNumbersRestartAfterDeletion(t *testing.T) {
	cfg := plain()
	cfg.ShowRowNumbers = true
	g := grid.Grid{{"h"}, {"a"}, {"b"}, {"c"}}.DeleteRow(1)
	assert.Equal(t, "| # | h |\n| --- | :--- |\n| 1 | b |\n| 2 | c |", Markdown(g, cfg))
}
