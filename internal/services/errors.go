package services

import (
	"errors"
	"fmt"
	"net/http"

	"doclib/internal/validation"

	"go.uber.org/zap"
)

// ===============================
// ERROR TYPES
// ===============================

const (
	ErrTypeValidation           = "VALIDATION_ERROR"
	ErrTypeUnauthorized         = "UNAUTHORIZED"
	ErrTypeForbidden            = "FORBIDDEN"
	ErrTypeNotFound             = "NOT_FOUND"
	ErrTypeConflict             = "CONFLICT"
	ErrTypeLimitExceeded        = "LIMIT_EXCEEDED"
	ErrTypeUpload               = "UPLOAD_ERROR"
	ErrTypeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	ErrTypeInternal             = "INTERNAL_ERROR"
)

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeForbidden,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeConflict,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewLimitExceededError is returned when a per-user quota is reached.
func NewLimitExceededError(message string, limit int) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeLimitExceeded,
		Message:    message,
		Details:    map[string]interface{}{"limit": limit},
		StatusCode: http.StatusBadRequest,
	}
}

// NewUploadError creates an upload error
func NewUploadError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeUpload,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewUnsupportedMediaTypeError creates an unsupported media type error
func NewUnsupportedMediaTypeError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeUnsupportedMediaType,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewInternalErrorWithCause keeps the driver error for logs only.
func NewInternalErrorWithCause(message string, cause error) *ServiceError {
	e := NewInternalError(message)
	e.Cause = cause
	return e
}

// ===============================
// SIDE EFFECT ERRORS
// ===============================

// SideEffectError reports that the primary action committed but a
// follow-up (a notification) failed.
type SideEffectError struct {
	Effect string
	Cause  error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("side effect %q failed: %v", e.Effect, e.Cause)
}

func (e *SideEffectError) Unwrap() error {
	return e.Cause
}

// NewSideEffectError wraps cause, returning nil when cause is nil.
func NewSideEffectError(effect string, cause error) error {
	if cause == nil {
		return nil
	}
	return &SideEffectError{Effect: effect, Cause: cause}
}

// IsSideEffectError reports whether err only signals a failed side effect.
func IsSideEffectError(err error) bool {
	var se *SideEffectError
	return errors.As(err, &se)
}

// ===============================
// ERROR UTILITIES
// ===============================

// IsServiceError checks if an error is a ServiceError
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// GetServiceError extracts a ServiceError from an error, or creates a generic one
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return NewInternalErrorWithCause("An internal error occurred", err)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, ErrTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, ErrTypeValidation)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return IsErrorType(err, ErrTypeConflict)
}

// ===============================
// ERROR CONTEXT
// ===============================

// ErrorContext provides additional context for errors
type ErrorContext struct {
	Operation string
	Resource  string
	Metadata  map[string]interface{}
}

// WithContext adds context to a service error
func (e *ServiceError) WithContext(ctx *ErrorContext) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	if ctx.Operation != "" {
		e.Details["operation"] = ctx.Operation
	}
	if ctx.Resource != "" {
		e.Details["resource"] = ctx.Resource
	}
	for k, v := range ctx.Metadata {
		e.Details[k] = v
	}
	return e
}

// ===============================
// COMMON ERROR PATTERNS
// ===============================

// EntityNotFoundError creates a standard entity not found error
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("%s not found", entityType)).WithContext(&ErrorContext{
		Resource: entityType,
		Metadata: map[string]interface{}{"id": id},
	})
}

// InsufficientPermissionsError creates a standard permissions error
func InsufficientPermissionsError(action, resource string) *ServiceError {
	return NewForbiddenError(fmt.Sprintf("Insufficient permissions to %s %s", action, resource)).WithContext(&ErrorContext{
		Operation: action,
		Resource:  resource,
	})
}

// InvalidInputError creates a standard invalid input error
func InvalidInputError(field, reason string) *ServiceError {
	return NewValidationError(fmt.Sprintf("Invalid input for field '%s': %s", field, reason), nil).WithContext(&ErrorContext{
		Metadata: map[string]interface{}{"field": field, "reason": reason},
	})
}

// validateRequest runs struct validation and returns a ValidationError
// listing every failed field.
func validateRequest(req interface{}) error {
	err := validation.ValidateStruct(req)
	if err == nil {
		return nil
	}
	se := NewValidationError(err.Error(), err)
	var fields validation.Errors
	if errors.As(err, &fields) {
		se.Details = map[string]interface{}{"fields": []validation.FieldError(fields)}
	}
	return se
}

// internalError logs cause and returns a masked INTERNAL_ERROR.
func internalError(logger *zap.Logger, message string, cause error, fields ...zap.Field) error {
	logger.Error(message, append(fields, zap.Error(cause))...)
	return NewInternalErrorWithCause(message, cause)
}
