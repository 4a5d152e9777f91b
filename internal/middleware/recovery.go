// File: internal/middleware/recovery.go
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"doclib/internal/contextutils"
	"doclib/internal/response"
	"doclib/internal/services"
	"doclib/internal/utils/appinfo"

	"go.uber.org/zap"
)

// RecoveryConfig holds configuration for panic recovery middleware
type RecoveryConfig struct {
	EnableStackTrace bool
	MaxStackFrames   int
	Environment      string
}

// DefaultRecoveryConfig returns production-ready recovery configuration
func DefaultRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{
		EnableStackTrace: true,
		MaxStackFrames:   20,
		Environment:      "production",
	}
}

// Recovery turns a panic into a masked 500 envelope. http.ErrAbortHandler
// is re-panicked so net/http can abort the connection as intended.
func Recovery(builder *response.Builder, config *RecoveryConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultRecoveryConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				fields := []zap.Field{
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("url", r.URL.String()),
					zap.Int64("user_id", contextutils.GetUserID(r.Context())),
					zap.String("environment", config.Environment),
					zap.String("service", appinfo.Name),
					zap.String("version", appinfo.Version()),
				}
				if config.EnableStackTrace {
					fields = append(fields, zap.String("stack", trimStack(debug.Stack(), config.MaxStackFrames)))
				}
				GetRequestLogger(r.Context()).Error("Panic recovered", fields...)

				err := services.NewInternalErrorWithCause("panic while handling request", fmt.Errorf("%v", rec))
				builder.WriteError(w, r, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// trimStack keeps the goroutine header and the first maxFrames frames. Each
// frame spans two lines (function, then file:line).
func trimStack(stack []byte, maxFrames int) string {
	lines := strings.Split(strings.TrimSpace(string(stack)), "\n")
	if maxFrames <= 0 || len(lines) <= 1+2*maxFrames {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:1+2*maxFrames], "\n") + "\n..."
}
