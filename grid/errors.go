package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidPattern indicates a search pattern that does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// ErrIngest indicates input that cannot be interpreted as tabular data.
var ErrIngest = errors.New("ingest failure")

// ErrUnknownOp indicates an edit operation name that is not recognised.
var ErrUnknownOp = errors.New("unknown operation")

// PatternError reports a regular expression that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidPattern) succeed for any PatternError.
func (e *PatternError) Is(target error) bool { return target == ErrInvalidPattern }

// IngestError reports a source that could not be turned into a Grid.
type IngestError struct {
	Source string // "paste", "sheet", "xlsx", "csv", "json", "html", "markdown", "docx"
	Err    error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Source, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIngest) succeed for any IngestError.
func (e *IngestError) Is(target error) bool { return target == ErrIngest }

// NewIngestError wraps err as an IngestError for the named source.
func NewIngestError(source string, err error) *IngestError {
	return &IngestError{Source: source, Err: err}
}

// OpError reports an operation descriptor that could not be applied.
type OpError struct {
	Name string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("operation %q: %v", e.Name, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
