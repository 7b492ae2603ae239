package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Cortexa-LLC/mcp/src/gridmd/config"
	"github.com/Cortexa-LLC/mcp/src/gridmd/converter"
	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/Cortexa-LLC/mcp/src/gridmd/ingest"
	"github.com/Cortexa-LLC/mcp/src/gridmd/logging"
	"github.com/Cortexa-LLC/mcp/src/gridmd/render"
)

const (
	formatXLSX   = "xlsx"
	xlsxMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartMem = 8 << 20
)

// loadRequest is the JSON body accepted when creating or replacing a
// session. Exactly one of Text, Rows or URI must be set.
type loadRequest struct {
	// Text is pasted clipboard content: rows split on newlines, cells on tabs.
	Text *string `json:"text,omitempty"`
	// Rows is a decoded sheet as an array of arrays.
	Rows [][]any `json:"rows,omitempty"`
	// URI is an http or https address of a table to fetch.
	URI   string `json:"uri,omitempty"`
	Sheet string `json:"sheet,omitempty"`
	// Source names the data for download file names.
	Source string `json:"source,omitempty"`
}

type opsRequest struct {
	Ops []grid.Op `json:"ops"`
}

type formatsResponse struct {
	Input      []string        `json:"input"`
	Output     []render.Format `json:"output"`
	Operations []string        `json:"operations"`
	Presets    []string        `json:"presets"`
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, formatsResponse{
		Input:      converter.SupportedFormats(),
		Output:     render.Formats(),
		Operations: grid.OpNames(),
		Presets:    s.presets.Names(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	g, source, err := s.readGrid(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	sess := s.store.Create(g, source)
	logging.WithFields(r.Context(), "session", sess.ID).Info("session created",
		"rows", sess.Rows, "width", sess.Width)
	respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// handleReplaceSession loads new data into an existing session. Empty pasted
// text leaves the session as it is.
func (s *Server) handleReplaceSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := s.store.Get(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	g, source, err := s.readGrid(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(g) == 0 {
		respondJSON(w, http.StatusOK, current)
		return
	}
	sess, err := s.store.Replace(id, g, source)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApplyOps(w http.ResponseWriter, r *http.Request) {
	var req opsRequest
	if err := decodeJSON(w, r, s.maxBytes, &req); err != nil {
		respondError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	sess, err := s.store.Apply(id, req.Ops...)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "session", id).Info("ops applied", "count", len(req.Ops))
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Reset(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	q := r.URL.Query()
	cfg, err := s.formatFromQuery(q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.MIMEType(cfg.OutputFormat))
	_, _ = io.WriteString(w, render.Render(sess.Grid.Filter(q.Get("filter")), cfg))
}

// handleDownload serves the rendered grid as an attachment. format=xlsx
// returns a workbook instead of text. A filter parameter narrows the rows in
// either case.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	g := sess.Grid.Filter(q.Get("filter"))
	if strings.EqualFold(q.Get("format"), formatXLSX) {
		var buf bytes.Buffer
		if err := render.WriteXLSX(&buf, g, q.Get("sheet")); err != nil {
			respondError(w, r, badRequest{err})
			return
		}
		setAttachment(w, xlsxMIMEType, render.DownloadStem(sess.Source)+"."+formatXLSX)
		_, _ = w.Write(buf.Bytes())
		return
	}

	cfg, err := s.formatFromQuery(q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	setAttachment(w, render.MIMEType(cfg.OutputFormat), render.DownloadName(sess.Source, cfg.OutputFormat))
	_, _ = io.WriteString(w, render.Render(g, cfg))
}

func setAttachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
}

// readGrid builds a grid from a multipart upload (field "file") or a JSON
// loadRequest.
func (s *Server) readGrid(r *http.Request) (grid.Grid, string, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		return s.readUpload(r)
	}

	var req loadRequest
	if err := decodeJSON(nil, r, s.maxBytes, &req); err != nil {
		return nil, "", err
	}

	set := 0
	for _, ok := range []bool{req.Text != nil, req.Rows != nil, req.URI != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, "", badRequest{errors.New("exactly one of text, rows or uri is required")}
	}

	switch {
	case req.Text != nil:
		g, err := ingest.FromPastedText(*req.Text)
		return g, req.Source, err
	case req.Rows != nil:
		g, err := ingest.FromSheetArray(req.Rows)
		return g, req.Source, err
	default:
		u, err := url.Parse(req.URI)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, "", badRequest{fmt.Errorf("uri must be an http or https URL: %q", req.URI)}
		}
		t, err := s.conv.LoadURI(r.Context(), req.URI, req.Sheet)
		if err != nil {
			return nil, "", asClientError(err)
		}
		source := req.Source
		if source == "" {
			source = filepath.Base(u.Path)
		}
		return t.Grid, source, nil
	}
}

func (s *Server) readUpload(r *http.Request) (grid.Grid, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.maxBytes+multipartMem)
	if err := r.ParseMultipartForm(multipartMem); err != nil {
		return nil, "", asClientError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", badRequest{fmt.Errorf("file field: %w", err)}
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !converter.CanConvert(name) {
		return nil, "", badRequest{fmt.Errorf("unsupported format: %s", name)}
	}
	if header.Size > s.maxBytes {
		return nil, "", fmt.Errorf("%w: %s is %d bytes (max %d)", converter.ErrTooLarge, name, header.Size, s.maxBytes)
	}
	if converter.IsWorkbook(name) {
		g, err := readWorkbookSheet(file, name, r.FormValue("sheet"))
		if err != nil {
			return nil, "", asClientError(err)
		}
		return g, name, nil
	}

	dir, err := os.MkdirTemp("", "gridmd-upload-")
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, name)
	if err := writeFile(path, file); err != nil {
		return nil, "", err
	}

	t, err := s.conv.LoadFile(r.Context(), path, r.FormValue("sheet"))
	if err != nil {
		return nil, "", asClientError(err)
	}
	return t.Grid, name, nil
}

// readWorkbookSheet reads one sheet of an uploaded workbook; an empty sheet
// name picks the first.
func readWorkbookSheet(r io.Reader, name, sheet string) (grid.Grid, error) {
	wb, err := ingest.ReadWorkbook(r, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()
	if sheet == "" {
		_, g, err := wb.First()
		return g, err
	}
	return wb.Sheet(sheet)
}

func writeFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// asClientError keeps domain errors as they are and marks everything else
// raised while reading client-supplied data as a bad request.
func asClientError(err error) error {
	var tooLarge *http.MaxBytesError
	if grid.IsUserError(err) || errors.Is(err, converter.ErrTooLarge) || errors.As(err, &tooLarge) {
		return err
	}
	return badRequest{err}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return badRequest{fmt.Errorf("decode request: %w", err)}
	}
	return nil
}

// formatFromQuery starts from the named preset (default "default") and
// overrides individual settings from query parameters.
func (s *Server) formatFromQuery(q url.Values) (render.FormatConfig, error) {
	name := q.Get("preset")
	if name == "" {
		name = config.PresetDefault
	}
	cfg, err := s.presets.Get(name)
	if err != nil {
		return cfg, badRequest{err}
	}

	if v := q.Get("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			return cfg, badRequest{err}
		}
		cfg.OutputFormat = f
	}
	if v := q.Get("alignment"); v != "" {
		a, err := render.ParseAlignment(v)
		if err != nil {
			return cfg, badRequest{err}
		}
		cfg.Alignment = a
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"boldHeader", &cfg.BoldHeader},
		{"boldFirstColumn", &cfg.BoldFirstColumn},
		{"rowNumbers", &cfg.ShowRowNumbers},
		{"pretty", &cfg.PrettyPrint},
		{"rawHTML", &cfg.RawHTML},
		{"displayWidth", &cfg.DisplayWidth},
	}
	for _, f := range flags {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, badRequest{fmt.Errorf("%s: %w", f.key, err)}
		}
		*f.dst = b
	}
	return cfg, nil
}
