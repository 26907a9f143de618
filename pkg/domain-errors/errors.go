// Package domainerrors defines the coded error taxonomy shared by the
// domain-modeling kernel and its collaborators.
//
// Failures are plain error values carrying a machine-readable Code so call
// sites can branch on kind (retry vs reject-input) without string matching.
// Validation failures additionally carry one FieldIssue per violated field.
package domainerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a failure for programmatic handling.
type Code string

const (
	// CodeSchemaDecode marks raw input that does not conform to the
	// structural schema. The error carries one FieldIssue per violation.
	CodeSchemaDecode Code = "SCHEMA_DECODE"

	// CodeInvariantViolation marks decoded props that fail a business rule.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// CodeOperationFailed marks an I/O-bound collaborator failure
	// (repository, publisher). Callers may retry.
	CodeOperationFailed Code = "OPERATION_FAILED"

	// CodeNotFound marks a lookup that produced no result where one was
	// required.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict marks a uniqueness or state conflict during persistence.
	CodeConflict Code = "CONFLICT"

	// CodeInvalidInput marks malformed identifiers or parameters at trust
	// boundaries.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeMisconfigured marks a programmer error in trait configuration.
	// Surfaced at build time, never deferred to first use.
	CodeMisconfigured Code = "MISCONFIGURED"
)

// FieldIssue describes a single schema violation.
type FieldIssue struct {
	// Path locates the violated field, e.g. "items[0].price".
	Path string
	// Message is human-readable, e.g. "must be greater than 0".
	Message string
}

func (i FieldIssue) String() string {
	return i.Path + ": " + i.Message
}

// Error is the concrete coded error type.
type Error struct {
	Code    Code
	Message string
	Issues  []FieldIssue
	cause   error
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error preserving the underlying cause for errors.Is /
// errors.As chains.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// NewSchemaDecode creates a SCHEMA_DECODE error carrying every violated
// field, not just the first.
func NewSchemaDecode(issues []FieldIssue) *Error {
	return &Error{
		Code:    CodeSchemaDecode,
		Message: "schema decode failed",
		Issues:  issues,
	}
}

// NewInvariantViolation creates an INVARIANT_VIOLATION error, or one with a
// caller-supplied code when provided.
func NewInvariantViolation(message string, code ...Code) *Error {
	c := CodeInvariantViolation
	if len(code) > 0 && code[0] != "" {
		c = code[0]
	}
	return &Error{Code: c, Message: message}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	for _, issue := range e.Issues {
		b.WriteString("; ")
		b.WriteString(issue.String())
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HasCode reports whether err or any error in its chain carries the code.
func HasCode(err error, code Code) bool {
	var coded *Error
	for errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}
		err = coded.cause
		coded = nil
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf returns the code of the outermost coded error in the chain, or the
// empty Code when err carries none.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// IssuesOf returns the field issues of the outermost coded error, or nil.
func IssuesOf(err error) []FieldIssue {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Issues
	}
	return nil
}

// IsValidation reports whether the failure rejects the input (schema or
// invariant) as opposed to an operational fault worth retrying.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case CodeSchemaDecode, CodeInvariantViolation, CodeInvalidInput:
		return true
	}
	return false
}
