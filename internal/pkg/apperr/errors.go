package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the caller-facing outcome of an operation.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidInterval   Code = "INVALID_INTERVAL"
	CodeItemNotAvailable  Code = "ITEM_NOT_AVAILABLE"
	CodeSelfBooking       Code = "SELF_BOOKING_FORBIDDEN"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeInvalidFilter     Code = "INVALID_FILTER"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeConflict          Code = "CONFLICT"
)

// Error is a caller-facing error with a stable code and an HTTP mapping.
// Anything that is not an *Error is treated as an internal fault by the
// HTTP layer.
type Error struct {
	Code    Code
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// NewNotFound reports a missing resource. It is also used for visibility
// denials on bookings so that unauthorized callers cannot distinguish
// "hidden" from "missing".
func NewNotFound(resource, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id = %s not found", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewInvalidInterval reports a booking interval whose end is not strictly
// after its start.
func NewInvalidInterval() *Error {
	return &Error{
		Code:    CodeInvalidInterval,
		Message: "booking end must be strictly after start",
		Status:  http.StatusBadRequest,
	}
}

// NewItemNotAvailable reports an attempt to book an item whose availability
// flag is off.
func NewItemNotAvailable(itemID string) *Error {
	return &Error{
		Code:    CodeItemNotAvailable,
		Message: fmt.Sprintf("item with id = %s is not available", itemID),
		Status:  http.StatusBadRequest,
	}
}

// NewSelfBookingForbidden reports an owner attempting to book their own item.
func NewSelfBookingForbidden() *Error {
	return &Error{
		Code:    CodeSelfBooking,
		Message: "owner cannot book their own item",
		Status:  http.StatusNotFound,
	}
}

// NewInvalidTransition reports a status change on a booking that already
// left the waiting state.
func NewInvalidTransition(current string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("booking status can only be changed from waiting, current status is %s", current),
		Status:  http.StatusBadRequest,
	}
}

// NewInvalidFilter reports an unrecognized booking state keyword.
func NewInvalidFilter(value string) *Error {
	return &Error{
		Code:    CodeInvalidFilter,
		Message: fmt.Sprintf("unknown state: %s", value),
		Status:  http.StatusBadRequest,
	}
}

// NewValidation reports a generic request validation failure.
func NewValidation(message string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflict reports a uniqueness or concurrent-modification conflict.
func NewConflict(message string) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// As unwraps err into an *Error if it carries one.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}
