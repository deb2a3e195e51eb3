// Package toolerror defines the typed failures a tool call can end with.
package toolerror

import (
	"errors"
	"fmt"
)

// Kind is a short machine-checkable error category
type Kind string

const (
	KindMethodNotFound Kind = "method_not_found"
	KindInvalidParams  Kind = "invalid_params"
	KindInternal       Kind = "internal_error"
)

// Error is a tool failure carrying its kind and a human-readable message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MethodNotFound reports an unknown operation name
func MethodNotFound(name string) *Error {
	return &Error{Kind: KindMethodNotFound, Message: fmt.Sprintf("unknown tool: %s", name)}
}

// InvalidParams reports a missing or unsupported argument
func InvalidParams(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidParams, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure, keeping its message for diagnostics
func Internal(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) && te.Kind == KindInternal {
		return te
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}

// Normalize converts any error into a typed tool error; typed errors pass through
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return Internal(err)
}

// KindOf returns the kind of err, treating untyped errors as internal
func KindOf(err error) Kind {
	if te := Normalize(err); te != nil {
		return te.Kind
	}
	return ""
}

// Is reports whether err is a tool error of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
