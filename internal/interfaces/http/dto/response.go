package dto

import "github.com/smartfertilizer/backend/internal/domain/shared"

// Response represents the standard API envelope
type Response struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []shared.FieldError `json:"errors,omitempty"`
	Count   *int                `json:"count,omitempty"`
	// Error carries the underlying diagnostic outside production
	Error string `json:"error,omitempty"`
}

// RouteNotFoundResponse is returned for unknown routes
type RouteNotFoundResponse struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	AvailableRoutes []string `json:"availableRoutes"`
}

// HealthResponse reports liveness and downstream state
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Database  string `json:"database"`
	AIService string `json:"aiService"`
	Time      string `json:"time"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewMessageResponse creates a success response with a message
func NewMessageResponse(message string, data any) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// NewListResponse creates a success response carrying the item count
func NewListResponse(data any, count int) Response {
	return Response{
		Success: true,
		Data:    data,
		Count:   &count,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string, details ...shared.FieldError) Response {
	return Response{
		Success: false,
		Message: message,
		Errors:  details,
	}
}
