package model

import "fmt"

// ErrorKind classifies scan errors for outcome mapping and reporting.
type ErrorKind string

// Error kinds. Selection errors are recovered via fallback; render,
// timeout and evaluation errors are isolated per document; IO errors
// are fatal to the run.
const (
	ErrKindSelection  ErrorKind = "selection"
	ErrKindRender     ErrorKind = "render"
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindEvaluation ErrorKind = "evaluation"
	ErrKindIO         ErrorKind = "io"
)

// ScanError is an error tagged with its taxonomy kind. Use errors.As to
// recover the kind at the pipeline boundary.
type ScanError struct {
	Kind ErrorKind
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// NewScanError wraps err with a kind.
func NewScanError(kind ErrorKind, err error) *ScanError {
	return &ScanError{Kind: kind, Err: err}
}

// SelectionErrorf builds a selection-phase error.
func SelectionErrorf(format string, args ...any) *ScanError {
	return &ScanError{Kind: ErrKindSelection, Err: fmt.Errorf(format, args...)}
}

// RenderErrorf builds a rendering-engine error for one document.
func RenderErrorf(format string, args ...any) *ScanError {
	return &ScanError{Kind: ErrKindRender, Err: fmt.Errorf(format, args...)}
}

// EvaluationErrorf builds a rules-library error for one document.
func EvaluationErrorf(format string, args ...any) *ScanError {
	return &ScanError{Kind: ErrKindEvaluation, Err: fmt.Errorf(format, args...)}
}
