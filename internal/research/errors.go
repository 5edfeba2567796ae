package research

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the failure taxonomy. Every error surfaced by the
// controller carries exactly one kind, derived from where the failure
// originated rather than from exception identity.
type ErrorKind string

// Supported error kinds.
const (
	ErrValidation       ErrorKind = "validation"
	ErrServerValidation ErrorKind = "server_validation"
	ErrAPI              ErrorKind = "api"
	ErrNetwork          ErrorKind = "network"
)

// Category is the presentation severity attached to a notification.
type Category string

// Notification categories.
const (
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
	CategorySuccess Category = "success"
)

// FieldError maps one server-side validation failure to the request field
// that caused it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured error produced at the gateway boundary (or by the
// client-side validator) and propagated unchanged to callers.
type Error struct {
	Kind       ErrorKind    `json:"kind"`
	Message    string       `json:"message"`
	StatusCode int          `json:"status_code,omitempty"`
	Fields     []FieldError `json:"field_errors,omitempty"`
	cause      error
}

// NewValidationError builds a client-side validation error.
func NewValidationError(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// NewServerValidationError builds a 422 field-level validation error.
func NewServerValidationError(fields []FieldError) *Error {
	return &Error{
		Kind:    ErrServerValidation,
		Message: "Please check your input and try again.",
		Fields:  fields,
	}
}

// NewAPIError builds an error for a non-2xx response carrying a payload.
func NewAPIError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: ErrAPI, Message: message, StatusCode: status}
}

// NewNetworkError builds an error for a transport failure with no response.
func NewNetworkError(cause error) *Error {
	msg := "network error: no response received"
	if cause != nil {
		msg = fmt.Sprintf("network error: %v", cause)
	}
	return &Error{Kind: ErrNetwork, Message: msg, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the transport-level cause for network errors.
func (e *Error) Unwrap() error {
	return e.cause
}

// Category maps the error kind to its presentation severity: client
// validation is a warning, everything else is an error.
func (e *Error) Category() Category {
	if e != nil && e.Kind == ErrValidation {
		return CategoryWarning
	}
	return CategoryError
}

// ErrSuperseded is returned from Submit when a newer submission replaced the
// caller's before its backend call resolved. The discarded outcome never
// mutates controller state.
var ErrSuperseded = errors.New("submission superseded by a newer request")

// AsError extracts a *Error from err, or nil if err is not structured.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return nil
}
