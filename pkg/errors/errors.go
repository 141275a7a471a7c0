// Package errors defines the error taxonomy shared by the pipeline tools:
// sentinel values for each failure class and a PipelineError wrapper that
// carries a human-readable message alongside the sentinel.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument marks a bad or missing command-line flag. Fatal before any work.
	ErrArgument = errors.New("argument error")
	// ErrIO marks an open/read/write failure on a mandatory file. Fatal.
	ErrIO = errors.New("i/o error")
	// ErrFormat marks a malformed index file: bad magic, wrong version, missing
	// section, size misalignment, unsorted dictionary. Fatal at load time.
	ErrFormat = errors.New("format error")
	// ErrParse marks a recoverable parse failure (a malformed JSON string
	// attempt, a bad query expression). Never fatal on its own.
	ErrParse = errors.New("parse error")
	// ErrData marks a bad data record: docId overflow, oversized term,
	// malformed token line. Per-line skip unless an on-disk invariant is at stake.
	ErrData = errors.New("data error")
)

type PipelineError struct {
	Err     error
	Message string
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *PipelineError {
	return &PipelineError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *PipelineError {
	return &PipelineError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsFatal reports whether err belongs to a class that must abort the process.
func IsFatal(err error) bool {
	return errors.Is(err, ErrArgument) ||
		errors.Is(err, ErrIO) ||
		errors.Is(err, ErrFormat)
}
