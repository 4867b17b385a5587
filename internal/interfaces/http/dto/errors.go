package dto

import (
	"net/http"

	"github.com/smartfertilizer/backend/internal/domain/shared"
)

// Error codes that exist only at the HTTP boundary
const (
	// ErrCodeRateLimited is used when a rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeBadRequest is used for malformed request bodies
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:         http.StatusBadRequest,
	shared.CodeUnauthorized:       http.StatusUnauthorized,
	shared.CodeForbidden:          http.StatusForbidden,
	shared.CodeNotFound:           http.StatusNotFound,
	shared.CodeConflict:           http.StatusConflict,
	shared.CodeServiceUnavailable: http.StatusServiceUnavailable,
	shared.CodeInternal:           http.StatusInternalServerError,

	// Upstream errors normally carry the collaborator status, see StatusFor
	shared.CodeUpstream: http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusFor returns the response status for a domain error. Upstream errors
// pass the collaborator status through when it is a 4xx or 5xx.
func StatusFor(err *shared.DomainError) int {
	if err.Code == shared.CodeUpstream {
		if err.Status >= http.StatusBadRequest && err.Status <= 599 {
			return err.Status
		}
		return http.StatusInternalServerError
	}
	return GetHTTPStatus(err.Code)
}
