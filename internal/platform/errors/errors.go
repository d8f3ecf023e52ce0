// Package errors provides a structured error type with wrapping and metadata
package errors

// import as perr

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine facing class of an error, stable on the wire
type ErrorCode uint16

// codes keep their order, clients switch on the numbers
const (
	ErrorCodeUnknown         ErrorCode = iota
	ErrorCodePanic                     // recovered by middleware
	ErrorCodeUnavailable               // duckling down or a disabled store
	ErrorCodeTooManyRequests           // duckling rate limited us
	ErrorCodeInvalidArgument           // decodes but cannot be used, an unknown zone or grain
	ErrorCodeValidation                // struct validation
	ErrorCodeJSON                      // not the expected JSON
	ErrorCodeNotFound
	ErrorCodeDB
)

var statusOf = map[ErrorCode]int{
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodeTooManyRequests: http.StatusTooManyRequests,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeNotFound:        http.StatusNotFound,
}

// HTTPStatusCode maps a code to its status, unmapped codes are 500
func HTTPStatusCode(c ErrorCode) int {
	if st, ok := statusOf[c]; ok {
		return st
	}
	return http.StatusInternalServerError
}

// Error carries a code, a message for humans, an optional offending field and the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
}

// Wire is the JSON form of an error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.orig == nil:
		return e.msg
	}
	return e.msg + ": " + e.orig.Error()
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// WireFrom converts any error to its wire form, foreign errors are Unknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.code, Message: e.msg, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// CodeOf returns the code of the outermost *Error in the chain, or Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As returns the outermost *Error in the chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WithField returns a copy of err naming the offending field, foreign errors are returned unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithFieldChain prefixes the field of err with parent, so time becomes values[1].time
// foreign errors are wrapped as Unknown
func WithFieldChain(err error, parent string) error {
	e, ok := As(err)
	if !ok {
		return &Error{code: ErrorCodeUnknown, msg: err.Error(), field: parent, orig: err}
	}
	c := *e
	if c.field == "" {
		c.field = parent
	} else {
		c.field = parent + "." + c.field
	}
	return &c
}

// New returns an *Error with code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf formats the message of a new *Error
func Newf(code ErrorCode, format string, a ...any) error { return New(code, fmt.Sprintf(format, a...)) }

// Wrap returns an *Error around orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf formats the message of Wrap
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return Wrap(orig, code, fmt.Sprintf(format, a...))
}

// shorthands for the codes handlers raise most
func InvalidArgf(format string, a ...any) error  { return Newf(ErrorCodeInvalidArgument, format, a...) }
func JSONErrf(format string, a ...any) error     { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error    { return Newf(ErrorCodePanic, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }
