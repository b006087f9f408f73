// Package errors provides the error taxonomy shared by every dscribe stage.
// DescribeError carries the failing operation, the column when one applies,
// a human-readable message and an optional cause, and is classified by Kind
// so callers can branch with errors.Is against the Err* sentinels.
package errors

import (
	"fmt"
)

// Kind classifies a DescribeError.
type Kind int

const (
	// KindIO covers unreadable or missing input files.
	KindIO Kind = iota + 1
	// KindSchema covers header/data shape mismatches.
	KindSchema
	// KindParse covers sampled cells that cannot yield a valid schema.
	KindParse
	// KindUnsupportedFormat is returned for input formats the core does not read.
	KindUnsupportedFormat
	// KindUnsupportedOperation is returned for operations the core does not implement.
	KindUnsupportedOperation
	// KindQuery wraps failures reported by the SQL engine.
	KindQuery
	// KindInvalidInput covers malformed arguments such as a negative row count.
	KindInvalidInput
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IoError"
	case KindSchema:
		return "SchemaError"
	case KindParse:
		return "ParseError"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindUnsupportedOperation:
		return "UnsupportedOperation"
	case KindQuery:
		return "QueryError"
	case KindInvalidInput:
		return "InvalidInput"
	default:
		return "UnknownError"
	}
}

// DescribeError represents a classified failure from any stage of the pipeline
type DescribeError struct {
	Kind    Kind   // Taxonomy bucket
	Op      string // Operation name (e.g., "Load", "Infer", "Mean")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DescribeError) Error() string {
	var msg string
	if e.Column != "" {
		msg = fmt.Sprintf("%s: %s operation failed on column '%s': %s", e.Kind, e.Op, e.Column, e.Message)
	} else {
		msg = fmt.Sprintf("%s: %s operation failed: %s", e.Kind, e.Op, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DescribeError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// A target carrying only a Kind (the Err* sentinels) matches every error of that kind.
func (e *DescribeError) Is(target error) bool {
	de, ok := target.(*DescribeError)
	if !ok {
		return false
	}
	if de.Op == "" && de.Column == "" && de.Message == "" {
		return e.Kind == de.Kind
	}
	return e.Kind == de.Kind && e.Op == de.Op && e.Column == de.Column && e.Message == de.Message
}

// Sentinels for errors.Is classification.
var (
	ErrIO                   = &DescribeError{Kind: KindIO}
	ErrSchema               = &DescribeError{Kind: KindSchema}
	ErrParse                = &DescribeError{Kind: KindParse}
	ErrUnsupportedFormat    = &DescribeError{Kind: KindUnsupportedFormat}
	ErrUnsupportedOperation = &DescribeError{Kind: KindUnsupportedOperation}
	ErrQuery                = &DescribeError{Kind: KindQuery}
	ErrInvalidInput         = &DescribeError{Kind: KindInvalidInput}
)

// Common error constructors for consistent error creation

// NewIOError creates an error for unreadable or missing input
func NewIOError(op, path string, cause error) *DescribeError {
	return &DescribeError{
		Kind:    KindIO,
		Op:      op,
		Message: fmt.Sprintf("cannot read %q", path),
		Cause:   cause,
	}
}

// NewSchemaError creates an error for inconsistent table shape
func NewSchemaError(op, message string) *DescribeError {
	return &DescribeError{
		Kind:    KindSchema,
		Op:      op,
		Message: message,
	}
}

// NewParseError creates an error for a cell that cannot be classified
func NewParseError(op, column, message string) *DescribeError {
	return &DescribeError{
		Kind:    KindParse,
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewUnsupportedFormatError creates an error naming the rejected input format
func NewUnsupportedFormatError(format string) *DescribeError {
	return &DescribeError{
		Kind:    KindUnsupportedFormat,
		Op:      "Load",
		Message: fmt.Sprintf("format %q is not supported", format),
	}
}

// NewUnsupportedOperationError creates an error naming the rejected operation
func NewUnsupportedOperationError(operation string) *DescribeError {
	return &DescribeError{
		Kind:    KindUnsupportedOperation,
		Op:      "Dispatch",
		Message: fmt.Sprintf("operation %q is not supported", operation),
	}
}

// NewQueryError wraps a failure reported by the query engine
func NewQueryError(message string, cause error) *DescribeError {
	return &DescribeError{
		Kind:    KindQuery,
		Op:      "SQL",
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DescribeError {
	return &DescribeError{
		Kind:    KindInvalidInput,
		Op:      op,
		Message: message,
	}
}
