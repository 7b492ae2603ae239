package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Cortexa-LLC/mcp/src/gridmd/converter"
	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
	"github.com/Cortexa-LLC/mcp/src/gridmd/logging"
	"github.com/Cortexa-LLC/mcp/src/gridmd/session"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeNotFound       = "not_found"
	codeInvalidPattern = "invalid_pattern"
	codeIngestFailed   = "ingest_failed"
	codeUnknownOp      = "unknown_op"
	codeBadRequest     = "bad_request"
	codeTooLarge       = "too_large"
	codeInternal       = "internal"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// badRequest marks client input errors that carry no domain sentinel.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	var bad badRequest
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, grid.ErrInvalidPattern):
		return http.StatusUnprocessableEntity, codeInvalidPattern
	case errors.Is(err, grid.ErrIngest):
		return http.StatusBadRequest, codeIngestFailed
	case errors.Is(err, grid.ErrUnknownOp):
		return http.StatusBadRequest, codeUnknownOp
	case errors.As(err, &tooLarge), errors.Is(err, converter.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, codeTooLarge
	case errors.As(err, &bad):
		return http.StatusBadRequest, codeBadRequest
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// respondError logs err and writes it as an ErrorResponse. Internal errors
// are not echoed to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request error", "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	respondJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
