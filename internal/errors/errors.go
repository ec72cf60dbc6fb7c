// Package errors provides the typed errors returned outside the pure
// estimate core: pricing-table loading, scenario decoding and config.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates a malformed request or flag
	TypeInput Type = "INPUT_ERROR"

	// TypeParsing indicates a document that could not be decoded
	TypeParsing Type = "PARSING_ERROR"

	// TypeValidation indicates a decoded document that breaks a table rule
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeLoad indicates a pricing table that could not be loaded at all
	TypeLoad Type = "LOAD_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNotFound indicates a missing file, preset or record
	TypeNotFound Type = "NOT_FOUND"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`

	// Issues lists every individual problem found, in discovery order
	Issues []string `json:"issues,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithIssues appends issue strings
func (e *Error) WithIssues(issues ...string) *Error {
	e.Issues = append(e.Issues, issues...)
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if err, or anything it wraps, is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// AsError returns the first *Error in err's chain
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}

// IssuesOf returns the issue list carried by err, or its message when it
// carries none. A nil error has no issues.
func IssuesOf(err error) []string {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) && len(e.Issues) > 0 {
		return append([]string(nil), e.Issues...)
	}
	return Flatten(err)
}

// Flatten splits an aggregated multierror into one message per error
func Flatten(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if stderrors.As(err, &merr) {
		out := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Validation creates a validation error whose issues are the flattened cause
func Validation(message string, cause error) *Error {
	return &Error{
		Type:    TypeValidation,
		Message: message,
		Cause:   cause,
		Issues:  Flatten(cause),
	}
}

// Load creates a load error carrying the issues that led to it
func Load(message string, issues []string) *Error {
	return &Error{
		Type:    TypeLoad,
		Message: message,
		Issues:  issues,
	}
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// NotFound creates a not found error
func NotFound(kind, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", kind, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
