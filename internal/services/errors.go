package services

import (
	"errors"
	"strings"

	"downconv/internal/history"
)

// Markers classify failures for run history. Every error downconv returns
// carries at most one of them.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrFilesystem    = errors.New("filesystem error")
	ErrNotFound      = errors.New("not found")
	// ErrConflict means the output belongs to something else: the destination
	// already exists or another process holds the folder lock.
	ErrConflict = errors.New("conflict")
)

// Error is a failure located in a conversion stage.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	b.WriteString(e.detail())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

func (e *Error) detail() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{e.Stage, e.Operation, e.Message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// Wrap tags err with marker and the stage it failed in. A nil marker means
// an external tool failed.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrExternalTool
	}
	return &Error{Marker: marker, Stage: stage, Operation: operation, Message: message, Err: err}
}

// FailureStatus maps a conversion error to the status recorded in run history.
//
// Conflicts leave the run skipped since nothing was written. Failures found
// before any output exists reject the folder. Encoder and copy failures fail
// the run.
func FailureStatus(err error) history.Status {
	switch {
	case errors.Is(err, ErrConflict):
		return history.StatusSkipped
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return history.StatusRejected
	default:
		return history.StatusFailed
	}
}
