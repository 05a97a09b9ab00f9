package errors

import (
	"fmt"
	"strings"
)

// Kind represents the type of error
type Kind int

const (
	ErrInternal Kind = iota
	ErrNotFound
	ErrValidation
	ErrConflict
	ErrInvalidInput
	ErrForbidden
)

func (k Kind) String() string {
	switch k {
	case ErrNotFound:
		return "not_found"
	case ErrValidation:
		return "validation"
	case ErrConflict:
		return "conflict"
	case ErrInvalidInput:
		return "invalid_input"
	case ErrForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is an application-level error with a kind for classification
type Error struct {
	Kind    Kind
	Field   string // optional input field the error refers to
	Message string
	Err     error // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructor functions for common error types

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

// InvalidInput reports malformed caller input for a specific field.
func InvalidInput(field, msg string) *Error {
	return &Error{Kind: ErrInvalidInput, Field: field, Message: msg}
}

func InvalidInputf(field, format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidInput, Field: field, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// FieldError is one violated rule, optionally tied to an input field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors collects every violated rule so a form can show all
// problems at once. The zero value means "valid".
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		if fe.Field != "" {
			msgs[i] = fe.Field + ": " + fe.Message
		} else {
			msgs[i] = fe.Message
		}
	}
	return strings.Join(msgs, "; ")
}

// Add appends a rule violation.
func (v *ValidationErrors) Add(field, msg string) {
	*v = append(*v, FieldError{Field: field, Message: msg})
}

// Merge appends all violations from other.
func (v *ValidationErrors) Merge(other ValidationErrors) {
	*v = append(*v, other...)
}

// Err returns nil when there are no violations, so callers can write
// `return problems.Err()` without returning a typed nil.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// HasField reports whether any violation refers to field.
func (v ValidationErrors) HasField(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}
