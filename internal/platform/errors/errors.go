// Package errors provides the structured error taxonomy shared by the account
// lifecycle operations, with stable machine codes and HTTP status mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error for logging, metrics and status mapping.
type Kind string

const (
	// KindValidation indicates invalid input (HTTP 400)
	KindValidation Kind = "validation"
	// KindUnauthorized indicates missing or failed authentication (HTTP 401)
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden indicates an authenticated but disallowed action (HTTP 403)
	KindForbidden Kind = "forbidden"
	// KindConflict indicates a resource conflict (HTTP 409)
	KindConflict Kind = "conflict"
	// KindRateLimited indicates throttling (HTTP 429)
	KindRateLimited Kind = "rate_limited"
	// KindUnavailable indicates a disabled or unavailable feature (HTTP 503)
	KindUnavailable Kind = "unavailable"
	// KindExternal indicates a credential-store/upstream failure (HTTP 502)
	KindExternal Kind = "external"
	// KindInternal indicates a server-side error (HTTP 500)
	KindInternal Kind = "internal"
)

// FieldIssue describes a single per-field validation failure.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Error is a structured error with a stable machine code that clients branch on.
// Message is always end-user safe; Cause is for logs only and never serialized.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int // optional HTTP status override (e.g. WEAK_PASSWORD is 400 or 422 depending on path)
	Details []FieldIssue
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error. An explicit Status
// override wins over the kind's default.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindExternal:
		return http.StatusBadGateway
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error (HTTP 400) with optional field details.
func Validation(code, message string, details ...FieldIssue) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Details: details}
}

// Unauthorized creates an authentication error (HTTP 401).
func Unauthorized(code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

// Forbidden creates an authorization error (HTTP 403).
func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

// Conflict creates a conflict error (HTTP 409).
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// RateLimited creates a throttling error (HTTP 429).
func RateLimited(code, message string) *Error {
	return &Error{Kind: KindRateLimited, Code: code, Message: message}
}

// Unavailable creates a feature-disabled/unavailable error (HTTP 503).
func Unavailable(code, message string) *Error {
	return &Error{Kind: KindUnavailable, Code: code, Message: message}
}

// External creates an upstream failure error (HTTP 502).
func External(code, message string, cause error) *Error {
	return &Error{Kind: KindExternal, Code: code, Message: message, Cause: cause}
}

// Internal creates a server-side error (HTTP 500). The cause is logged, never
// sent to the client.
func Internal(code, message string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: code, Message: message, Cause: cause}
}

// WithStatus overrides the HTTP status derived from the kind (chainable).
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithField adds a logging context field to the error (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON error body sent to clients:
// {error, code?, details?}. Causes and context never leak here.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldIssue `json:"details,omitempty"`
}

// ToResponse converts an Error to its client-facing JSON shape.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// AsStructuredError converts any error into a structured Error. Unclassified
// errors become a generic internal error so raw text cannot reach clients.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return Internal("INTERNAL", "Something went wrong. Please try again later.", err)
}
