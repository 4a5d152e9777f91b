package docs

import "time"

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message,omitempty" example:"Operation successful"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"requestId,omitempty" example:"6f1c2b9e-3c1d-4c1a-9d6e-2a7f5b8e9c10"`
}

// PaginatedData is the data member of every list response
type PaginatedData struct {
	TotalItems  int64         `json:"totalItems" example:"95"`
	TotalPages  int           `json:"totalPages" example:"10"`
	CurrentPage int           `json:"currentPage" example:"1"`
	Items       []interface{} `json:"items"`
}

// PaginatedResponse wraps PaginatedData in the envelope
type PaginatedResponse struct {
	Success bool          `json:"success" example:"true"`
	Data    PaginatedData `json:"data"`
}

// ErrorDetail classifies a failure
type ErrorDetail struct {
	Type    string            `json:"type" example:"VALIDATION_ERROR"`
	Code    string            `json:"code,omitempty" example:"STATUS_UNCHANGED"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorResponse is the envelope of a failed request. Internal errors
// carry a generic message.
type ErrorResponse struct {
	Success   bool        `json:"success" example:"false"`
	Message   string      `json:"message" example:"Invalid request parameters"`
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"requestId,omitempty"`
}

// MessageResponse is a success without data
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Notification deleted"`
}

// CountResponse carries a single counter
type CountResponse struct {
	Success bool             `json:"success" example:"true"`
	Data    map[string]int64 `json:"data"`
}

// HealthCheckResponse represents the health check response
type HealthCheckResponse struct {
	Status      string                     `json:"status" example:"healthy"`
	Timestamp   time.Time                  `json:"timestamp" example:"2026-01-15T10:30:00Z"`
	Uptime      string                     `json:"uptime" example:"3h2m1s"`
	Version     string                     `json:"version" example:"1.0.0"`
	Environment string                     `json:"environment" example:"production"`
	Components  map[string]ComponentHealth `json:"components"`
}

// ComponentHealth is one dependency's probe result
type ComponentHealth struct {
	Status string `json:"status" example:"healthy"`
	Error  string `json:"error,omitempty"`
}
