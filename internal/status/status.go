// Package status carries the error taxonomy shared by the reservation
// engine and its handlers. Every failure the engine can report maps to
// exactly one code; handlers translate codes to HTTP once, at the boundary.
package status

import "errors"

type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeForbidden    Code = "FORBIDDEN"
	CodeInvalidState Code = "INVALID_STATE"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeConflict     Code = "CONFLICT"
	CodeUnavailable  Code = "UNAVAILABLE"
)

type codedError struct {
	code Code
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() Code    { return e.code }

func NotFound(msg string) error     { return codedError{CodeNotFound, msg} }
func Forbidden(msg string) error    { return codedError{CodeForbidden, msg} }
func InvalidState(msg string) error { return codedError{CodeInvalidState, msg} }
func InvalidInput(msg string) error { return codedError{CodeInvalidInput, msg} }
func Conflict(msg string) error     { return codedError{CodeConflict, msg} }
func Unavailable(msg string) error  { return codedError{CodeUnavailable, msg} }

// CodeOf extracts the code from err, or "" for uncoded errors.
func CodeOf(err error) Code {
	var ce interface{ Code() Code }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

func Is(err error, code Code) bool { return CodeOf(err) == code }
