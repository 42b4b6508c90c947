package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced locker, asset or transaction does
// not exist. Callers get it wrapped with context; test with errors.Is.
var ErrNotFound = errors.New("not found")

// ErrConflict is reserved for concurrent modification of the same record.
// Nothing returns it yet: appends and edits never conflict.
var ErrConflict = errors.New("conflict")

// ValidationError rejects a request before anything is written.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// notFound wraps ErrNotFound with the kind and id of the missing record.
func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}
