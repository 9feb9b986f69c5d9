package processor

import (
	"gitlab.com/tozd/go/errors"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrNotFound        = errors.Base("not found")
	ErrAlreadyExists   = errors.Base("already exists")
	ErrInvalidArgument = errors.Base("invalid argument")
	ErrInvalidState    = errors.Base("invalid state")
	ErrValidation      = errors.Base("validation error")
	ErrIOFailure       = errors.Base("i/o failure")
)

var kinds = []struct {
	kind  error
	title string
}{
	{ErrNotFound, "File Not Found"},
	{ErrAlreadyExists, "Output Exists"},
	{ErrInvalidArgument, "Invalid Input"},
	{ErrInvalidState, "Invalid State"},
	{ErrValidation, "Validation Error"},
	{ErrIOFailure, "File Operation Error"},
}

// kindError tags err with a kind without changing its message.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string   { return e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

func withKind(kind, err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return err
		}
	}
	return &kindError{kind: kind, err: err}
}

// KindOf returns the display title for the kind of err, or "Unexpected Error".
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.title
		}
	}
	return "Unexpected Error"
}
