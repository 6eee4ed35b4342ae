// Package apperrors defines the error kinds services return to the HTTP boundary.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary layer.
type Kind string

const (
	KindInternal     Kind = "internal"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindBadRequest   Kind = "bad_request"
	KindUpstream     Kind = "upstream"
)

// Error is a classified error. Op names the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// NotFound reports a missing timeframe, event or person.
func NotFound(op, message string) *Error {
	return newError(KindNotFound, op, message, nil)
}

// Unauthorized reports a wrong code or a passed deadline.
func Unauthorized(op, message string) *Error {
	return newError(KindUnauthorized, op, message, nil)
}

// Conflict reports a duplicate write, such as a second check-in.
func Conflict(op, message string) *Error {
	return newError(KindConflict, op, message, nil)
}

// BadRequest reports a malformed or invalid payload.
func BadRequest(op, message string) *Error {
	return newError(KindBadRequest, op, message, nil)
}

// Upstream wraps a failure of the spreadsheet, object storage or email collaborator.
func Upstream(op, message string, err error) *Error {
	return newError(KindUpstream, op, message, err)
}

// Internal wraps an unexpected store failure.
func Internal(op, message string, err error) *Error {
	return newError(KindInternal, op, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
	}
	return "internal error"
}
