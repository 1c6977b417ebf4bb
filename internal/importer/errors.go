package importer

import "fmt"

// ParseError means the uploaded payload could not be read at all; nothing
// has been written when it surfaces.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError means one row carried a value outside the allowed set.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}
func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError wraps a store failure for one row. Rows written before
// it stay committed; the import is not atomic.
type PersistenceError struct {
	Row int
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store question (row %d): %v", e.Row, e.Err)
}
func (e *PersistenceError) Unwrap() error { return e.Err }
