// file: internal/middleware/structured_logger.go
package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig holds configuration for structured logging middleware
type LoggingConfig struct {
	LogRequestHeaders    []string
	SensitiveHeaders     []string
	SlowRequestThreshold time.Duration
	VerySlowThreshold    time.Duration
	// SkipPaths are logged at debug level only (health probes, scrapes).
	SkipPaths    []string
	LogUserAgent bool
}

// DefaultLoggingConfig returns production-ready logging configuration
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		LogRequestHeaders: []string{
			"Content-Type", "Content-Length", "Accept", "X-Forwarded-For", "Authorization",
		},
		SensitiveHeaders:     []string{"Authorization", "Cookie", "Set-Cookie"},
		SlowRequestThreshold: 1 * time.Second,
		VerySlowThreshold:    5 * time.Second,
		SkipPaths:            []string{"/health", "/metrics"},
		LogUserAgent:         true,
	}
}

// StructuredLogging logs one line per completed request, with the level
// chosen from the status code and duration.
func StructuredLogging(config *LoggingConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultLoggingConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := GetRequestStart(r.Context())
			requestLogger := GetRequestLogger(r.Context())

			writer := newStatusRecorder(w)
			next.ServeHTTP(writer, r)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.Int("status", writer.status),
				zap.Duration("duration", duration),
				zap.Int64("response_size", writer.bytesWritten),
				zap.String("query", r.URL.RawQuery),
			}
			if config.LogUserAgent {
				fields = append(fields, zap.String("user_agent", r.UserAgent()))
			}
			if len(config.LogRequestHeaders) > 0 {
				fields = append(fields, zap.Object("headers", headerFields(r.Header, config)))
			}

			level := completionLevel(writer.status, duration, config)
			if level == zapcore.InfoLevel && isSkipPath(r.URL.Path, config.SkipPaths) {
				level = zapcore.DebugLevel
			}
			if ce := requestLogger.Check(level, "Request completed"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}

func completionLevel(status int, duration time.Duration, config *LoggingConfig) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case duration >= config.VerySlowThreshold:
		return zapcore.ErrorLevel
	case status >= 400, duration >= config.SlowRequestThreshold:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func isSkipPath(path string, skip []string) bool {
	for _, p := range skip {
		if path == p {
			return true
		}
	}
	return false
}

// headerFields renders the configured headers with sensitive values redacted
func headerFields(h http.Header, config *LoggingConfig) zapcore.ObjectMarshalerFunc {
	return func(enc zapcore.ObjectEncoder) error {
		for _, name := range config.LogRequestHeaders {
			value := h.Get(name)
			if value == "" {
				continue
			}
			for _, sensitive := range config.SensitiveHeaders {
				if strings.EqualFold(name, sensitive) {
					value = "[REDACTED]"
					break
				}
			}
			enc.AddString(name, value)
		}
		return nil
	}
}

// ===============================
// STATUS RECORDER
// ===============================

// statusRecorder captures the status code and body size. It forwards
// Hijack and Flush so websocket upgrades and streamed downloads keep working.
type statusRecorder struct {
	http.ResponseWriter
	status       int
	bytesWritten int64
	wroteHeader  bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(data []byte) (int, error) {
	rw.wroteHeader = true
	written, err := rw.ResponseWriter.Write(data)
	rw.bytesWritten += int64(written)
	return written, err
}

func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
