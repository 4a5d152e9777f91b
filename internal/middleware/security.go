// File: internal/middleware/security.go
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ===============================
// SECURITY CONFIGURATION
// ===============================

// SecurityConfig holds security header and CORS configuration
type SecurityConfig struct {
	CSP            string
	SwaggerCSP     string
	EnableHSTS     bool
	HSTSMaxAge     time.Duration
	FrameOptions   string
	ReferrerPolicy string

	// AllowedOrigins lists CORS origins; empty or "*" allows any origin
	// without credentials.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	CORSMaxAge     time.Duration

	// MaxBodyBytes caps request bodies; zero disables the cap
	MaxBodyBytes int64
}

// DefaultSecurityConfig returns production-ready security configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		CSP:            "default-src 'none'; frame-ancestors 'none'",
		SwaggerCSP:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:",
		EnableHSTS:     true,
		HSTSMaxAge:     365 * 24 * time.Hour,
		FrameOptions:   "DENY",
		ReferrerPolicy: "strict-origin-when-cross-origin",
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", HeaderXRequestID, HeaderXCorrelationID},
		ExposedHeaders: []string{HeaderXRequestID, HeaderXCorrelationID, "Content-Disposition"},
		CORSMaxAge:     12 * time.Hour,
		MaxBodyBytes:   60 << 20,
	}
}

// SecurityHeaders sets the response security headers
func SecurityHeaders(config *SecurityConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	hsts := fmt.Sprintf("max-age=%d; includeSubDomains", int(config.HSTSMaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", config.FrameOptions)
			h.Set("Referrer-Policy", config.ReferrerPolicy)
			if strings.HasPrefix(r.URL.Path, "/swagger/") {
				h.Set("Content-Security-Policy", config.SwaggerCSP)
			} else {
				h.Set("Content-Security-Policy", config.CSP)
			}
			if config.EnableHSTS && r.TLS != nil {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflight requests and decorates responses for allowed origins
func CORS(config *SecurityConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	allowAny := len(config.AllowedOrigins) == 0
	allowed := make(map[string]bool, len(config.AllowedOrigins))
	for _, o := range config.AllowedOrigins {
		if o == "*" {
			allowAny = true
		}
		allowed[strings.ToLower(o)] = true
	}
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	exposed := strings.Join(config.ExposedHeaders, ", ")
	maxAge := fmt.Sprintf("%d", int(config.CORSMaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			switch {
			case allowed[strings.ToLower(origin)]:
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			case allowAny:
				h.Set("Access-Control-Allow-Origin", "*")
			default:
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Expose-Headers", exposed)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize wraps request bodies in http.MaxBytesReader
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
