package response

import (
	"context"
	"encoding/json"
	"net/http"

	"doclib/internal/contextutils"
	"doclib/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE CONFIGURATION
// ===============================

// Config holds configuration for the response system
type Config struct {
	PrettyJSON         bool
	IncludeRequestID   bool
	MaskInternalErrors bool
}

// DefaultConfig returns production response configuration
func DefaultConfig() *Config {
	return &Config{
		PrettyJSON:         false,
		IncludeRequestID:   true,
		MaskInternalErrors: true,
	}
}

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

// ErrorDetail represents error information in API responses
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

const (
	maskedMessage     = "An internal error occurred"
	sideEffectMessage = "The action succeeded but the owner could not be notified"
)

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder helps construct standardized responses
type Builder struct {
	config *Config
	logger *zap.Logger
}

// NewBuilder creates a new response builder
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{config: config, logger: logger}
}

// Success creates a successful API response
func (b *Builder) Success(ctx context.Context, data interface{}) *APIResponse {
	return &APIResponse{Success: true, Data: data, RequestID: b.requestID(ctx)}
}

// Message creates a successful response carrying only a message
func (b *Builder) Message(ctx context.Context, message string) *APIResponse {
	return &APIResponse{Success: true, Message: message, RequestID: b.requestID(ctx)}
}

// Error creates an error response from any error. Only ServiceErrors keep
// their message; everything else is masked.
func (b *Builder) Error(ctx context.Context, err error) *APIResponse {
	se := services.GetServiceError(err)
	resp := &APIResponse{
		Success:   false,
		Message:   se.Message,
		Error:     &ErrorDetail{Type: se.Type, Code: se.Code, Details: se.Details},
		RequestID: b.requestID(ctx),
	}
	if b.config.MaskInternalErrors && se.Type == services.ErrTypeInternal {
		resp.Message = maskedMessage
		resp.Error.Details = nil
	}
	b.logError(ctx, err, se)
	return resp
}

// ===============================
// HTTP RESPONSE WRITERS
// ===============================

// WriteJSON writes a JSON response with appropriate headers
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, response *APIResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if statusCode >= 400 {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(response); err != nil {
		b.logger.Error("Failed to encode JSON response",
			zap.Error(err),
			zap.String("request_id", contextutils.GetRequestID(r.Context())),
		)
	}
}

// WriteSuccess writes a 200 response
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, b.Success(r.Context(), data), http.StatusOK)
}

// WriteCreated writes a 201 response
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, b.Success(r.Context(), data), http.StatusCreated)
}

// WriteMessage writes a 200 response with a message and no data
func (b *Builder) WriteMessage(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteJSON(w, r, b.Message(r.Context(), message), http.StatusOK)
}

// WriteError writes an error response with the status of the error type
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	b.WriteJSON(w, r, b.Error(r.Context(), err), StatusFor(err))
}

// WriteResult writes data with status when err is nil or only reports a
// failed side effect; any other error is written as an error response.
func (b *Builder) WriteResult(w http.ResponseWriter, r *http.Request, status int, data interface{}, err error) {
	switch {
	case err == nil:
		b.WriteJSON(w, r, b.Success(r.Context(), data), status)
	case services.IsSideEffectError(err):
		contextutils.Logger(r.Context(), b.logger).Warn("Side effect failed", zap.Error(err))
		resp := b.Success(r.Context(), data)
		resp.Message = sideEffectMessage
		b.WriteJSON(w, r, resp, status)
	default:
		b.WriteError(w, r, err)
	}
}

// ===============================
// UTILITY METHODS
// ===============================

func (b *Builder) requestID(ctx context.Context) string {
	if !b.config.IncludeRequestID {
		return ""
	}
	return contextutils.GetRequestID(ctx)
}

func (b *Builder) logError(ctx context.Context, err error, se *services.ServiceError) {
	logger := contextutils.Logger(ctx, b.logger)
	switch se.Type {
	case services.ErrTypeInternal:
		logger.Error("Internal error", zap.String("error_type", se.Type), zap.Error(err))
	case services.ErrTypeValidation, services.ErrTypeUpload, services.ErrTypeUnsupportedMediaType:
		logger.Warn("Request rejected",
			zap.String("error_type", se.Type),
			zap.String("error_message", se.Message),
		)
	default:
		logger.Info("Request completed with error",
			zap.String("error_type", se.Type),
			zap.String("error_code", se.Code),
		)
	}
}
