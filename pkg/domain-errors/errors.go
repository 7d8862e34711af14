// Package domainerrors carries tagged failures from services to transports.
//
// Every failure a registry operation can produce is an *Error with exactly one
// Code. Transports translate codes into status codes; services never return
// bare errors for precondition failures.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure.
type Code string

const (
	// Registry failure kinds.
	CodeUnauthorized        Code = "unauthorized"
	CodePropertyNotFound    Code = "property_not_found"
	CodeNotOwner            Code = "not_owner"
	CodeInvalidRecipient    Code = "invalid_recipient"
	CodeTransferRestricted  Code = "transfer_restricted"
	CodeInvalidCoordinates  Code = "invalid_coordinates"
	CodeInvalidArea         Code = "invalid_area"
	CodeInsufficientPayment Code = "insufficient_payment"
	CodePropertyExists      Code = "property_exists"

	// Generic kinds.
	CodeUnauthenticated Code = "unauthenticated"
	CodeBadRequest      Code = "bad_request"
	CodeValidation      Code = "validation_error"
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "conflict"
	CodeTimeout         Code = "timeout"
	CodeInternal        Code = "internal_error"
)

// Error is a tagged failure.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error without a cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to a cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost *Error in the chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err is an *Error tagged with code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
