package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryActor    Category = "actor"
	CategoryRouting  Category = "routing"
	CategoryRender   Category = "render"
	CategoryHandler  Category = "handler"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
)

// Error is a structured error with a stable code and category.
// Errors with the same code compare equal under errors.Is, so packages can
// export code-backed sentinels while call sites attach per-occurrence detail.
type Error struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (actor, routing, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer, per-occurrence explanation.
	Detail string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
// This lets errors.Is match detailed instances against registry sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetail returns a copy of the error with per-occurrence detail attached.
// The receiver is not modified, so registry sentinels stay clean.
func (e *Error) WithDetail(format string, args ...any) *Error {
	clone := *e
	clone.Detail = fmt.Sprintf(format, args...)
	return &clone
}

// Wrap returns a copy of the error wrapping an underlying cause.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Wrapped = err
	return &clone
}

// New creates an error from a registered code.
// Unknown codes produce a generic error rather than panicking.
func New(code string) *Error {
	if tmpl, ok := registry[code]; ok {
		return &Error{
			Code:     code,
			Category: tmpl.Category,
			Message:  tmpl.Message,
		}
	}
	return &Error{
		Code:     code,
		Category: CategoryActor,
		Message:  "unknown error",
	}
}

// Newf creates an error from a registered code with detail.
func Newf(code string, format string, args ...any) *Error {
	return New(code).WithDetail(format, args...)
}
