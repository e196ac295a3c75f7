package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a domain error carrying a machine-readable code, optional
// metadata for message interpolation, and an optional wrapped cause.
type Error struct {
	Code     Code
	Metadata map[string]string
	cause    error
}

// New creates a domain error for the given code.
func New(code Code) *Error {
	return &Error{Code: code}
}

// Wrap creates a domain error for the given code with an underlying cause.
func Wrap(code Code, cause error) *Error {
	return &Error{Code: code, cause: cause}
}

// WithMeta returns a copy of the error with the given metadata entry added.
func (e *Error) WithMeta(key, value string) *Error {
	out := &Error{Code: e.Code, cause: e.cause, Metadata: make(map[string]string, len(e.Metadata)+1)}
	for k, v := range e.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata[key] = value
	return out
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if len(e.Metadata) > 0 {
		b.WriteString(fmt.Sprintf(" %v", e.Metadata))
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so sentinel-style comparisons work:
// errors.Is(err, errors.New(CodeNotMember)).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
// Returns nil if the error is not a domain error or has no metadata.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
