package domain

import "fmt"

// ParseError indicates a malformed type-descriptor string. Offset is the byte
// offset into the original type text where the offending substring starts.
type ParseError struct {
	Input   string
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse type %q at offset %d: %s", e.Input, e.Offset, e.Message)
}

// BuildError wraps a parse failure during whole-table schema construction.
// A single bad column aborts the entire build; no partial tree is returned.
type BuildError struct {
	Column string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build schema: column %q: %v", e.Column, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// GenerationError indicates a node whose kind is not one of the four defined
// variants. Unreachable for trees produced by the builder; it signals a bug,
// not bad user input.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string { return "generate sql: " + e.Message }

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrParse creates a ParseError for the given input and offset.
func ErrParse(input string, offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{Input: input, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
