package models

import "fmt"

// LoadError is returned when the input dataset cannot be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError is returned when a column required for shaping is absent.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing column %q", e.Column)
}

// WriteError is returned when a sink fails to persist the table.
type WriteError struct {
	Sink string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Sink, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
