package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// DomainError represents a domain-level error
type DomainError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"-"` // optional HTTP status override (upstream errors)
	Details []FieldError `json:"details,omitempty"`
	Cause   error        `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a cause to a new domain error
func Wrap(err error, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewValidationError creates a validation error listing every violated field
func NewValidationError(details ...FieldError) *DomainError {
	msg := "Validation failed"
	if len(details) == 1 {
		msg = details[0].Message
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: msg,
		Details: details,
	}
}

// NewUpstreamError reports a failure payload returned by an external collaborator
func NewUpstreamError(status int, message string) *DomainError {
	return &DomainError{
		Code:    CodeUpstream,
		Message: message,
		Status:  status,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists      = NewDomainError(CodeConflict, "Resource already exists")
	ErrInvalidInput       = NewDomainError(CodeValidation, "Invalid input provided")
	ErrUnauthorized       = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden          = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrServiceUnavailable = NewDomainError(CodeServiceUnavailable, "Service temporarily unavailable")
	ErrInternal           = NewDomainError(CodeInternal, "An unexpected error occurred")
)

// FieldErrors accumulates per-field violations
type FieldErrors []FieldError

// Add records a violation
func (fe *FieldErrors) Add(field, message string, value any) {
	*fe = append(*fe, FieldError{Field: field, Message: message, Value: value})
}

// Err returns a validation error when at least one field was recorded
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return NewValidationError(fe...)
}

// IsCode reports whether err carries the given domain error code
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
