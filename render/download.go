package render

import (
	"path/filepath"
	"strings"
)

const defaultDownloadBase = "table"

var extensions = map[Format]string{
	FormatMarkdown: "md",
	FormatCSV:      "csv",
	FormatJSON:     "json",
	FormatHTML:     "html",
}

var mimeTypes = map[Format]string{
	FormatMarkdown: "text/markdown",
	FormatCSV:      "text/csv",
	FormatJSON:     "application/json",
	FormatHTML:     "text/html",
}

// Extension returns the file extension (without dot) for f. Unknown formats
// get the Markdown extension, matching Render's fallback.
func Extension(f Format) string {
	if ext, ok := extensions[f]; ok {
		return ext
	}
	return extensions[FormatMarkdown]
}

// MIMEType returns the content type served for f, always with a UTF-8 charset.
func MIMEType(f Format) string {
	mt, ok := mimeTypes[f]
	if !ok {
		mt = mimeTypes[FormatMarkdown]
	}
	return mt + "; charset=utf-8"
}

// DownloadStem is the base of a download file name: the source's final path
// element without its extension, or "table" when that is empty.
func DownloadStem(source string) string {
	stem := ""
	if source != "" {
		base := filepath.Base(source)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
		if base == "." || base == string(filepath.Separator) {
			stem = ""
		}
	}
	if stem == "" {
		stem = defaultDownloadBase
	}
	return stem
}

// DownloadName derives the output file name for f from the source name.
func DownloadName(source string, f Format) string {
	return DownloadStem(source) + "." + Extension(f)
}
