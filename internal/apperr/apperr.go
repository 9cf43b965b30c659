// Package apperr defines the expected failure kinds a request can end with.
// Anything that is not an *Error is treated as unhandled.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an expected failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindNotFound
	KindConflict
)

// FieldError names one violated input rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a domain failure with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	// Status overrides the kind's default HTTP status when non-zero.
	Status int
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus returns the response status for the error.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Validation reports malformed or missing input.
func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Auth reports a missing, invalid or expired credential.
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// NotFound reports an identifier or slug that does not resolve.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a duplicate unique field. Routes that answer duplicates
// with 400 pass http.StatusBadRequest as status; zero keeps 409.
func Conflict(msg string, status int) *Error {
	return &Error{Kind: KindConflict, Message: msg, Status: status}
}

// As unwraps err into an *Error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
