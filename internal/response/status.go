// File: internal/response/status.go
package response

import (
	"net/http"

	"doclib/internal/services"
)

// StatusCodeMap maps error types to HTTP status codes. It backs errors
// whose ServiceError carries no explicit status.
var StatusCodeMap = map[string]int{
	services.ErrTypeValidation:           http.StatusBadRequest,
	services.ErrTypeUnauthorized:         http.StatusUnauthorized,
	services.ErrTypeForbidden:            http.StatusForbidden,
	services.ErrTypeNotFound:             http.StatusNotFound,
	services.ErrTypeConflict:             http.StatusConflict,
	services.ErrTypeLimitExceeded:        http.StatusBadRequest,
	services.ErrTypeUpload:               http.StatusBadRequest,
	services.ErrTypeUnsupportedMediaType: http.StatusBadRequest,
	services.ErrTypeInternal:             http.StatusInternalServerError,
}

// GetStatusCodeFromErrorType returns appropriate HTTP status code for error type
func GetStatusCodeFromErrorType(errorType string) int {
	if code, exists := StatusCodeMap[errorType]; exists {
		return code
	}
	return http.StatusInternalServerError
}

// StatusFor returns the HTTP status for err
func StatusFor(err error) int {
	se := services.GetServiceError(err)
	if se.StatusCode > 0 {
		return se.StatusCode
	}
	return GetStatusCodeFromErrorType(se.Type)
}
