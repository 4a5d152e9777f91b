// file: internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"doclib/internal/contextutils"
	"doclib/internal/response"
	"doclib/internal/services"

	"go.uber.org/zap"
)

// queryTokenParam carries the token on websocket upgrades, where browsers
// cannot set an Authorization header.
const queryTokenParam = "access_token"

// AuthMiddleware authenticates bearer tokens and enforces roles
type AuthMiddleware struct {
	auth    services.AuthService
	builder *response.Builder
	logger  *zap.Logger
}

// NewAuthMiddleware creates the authentication middleware
func NewAuthMiddleware(auth services.AuthService, builder *response.Builder, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, builder: builder, logger: logger}
}

// ===============================
// MAIN AUTHENTICATION MIDDLEWARE
// ===============================

// Authenticate resolves the caller from the bearer token. Without a token
// the request continues anonymously unless required is set; a token that
// is present but invalid is always rejected.
func (am *AuthMiddleware) Authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestLogger := GetRequestLogger(ctx)

			token := extractToken(r)
			if token == "" {
				if required {
					am.builder.WriteError(w, r, services.NewUnauthorizedError("Authentication required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := am.auth.ValidateToken(token)
			if err != nil {
				requestLogger.Warn("Token rejected", zap.Error(err))
				am.builder.WriteError(w, r, services.NewUnauthorizedError("Invalid or expired token"))
				return
			}
			userID, err := claims.UserID()
			if err != nil || userID <= 0 {
				requestLogger.Warn("Token subject is not a user id", zap.String("subject", claims.Subject))
				am.builder.WriteError(w, r, services.NewUnauthorizedError("Invalid or expired token"))
				return
			}

			user := &contextutils.User{
				ID:    userID,
				Name:  claims.Name,
				Email: claims.Email,
				Role:  claims.Role,
			}
			ctx = contextutils.WithUser(ctx, user)
			ctx = contextutils.WithLogger(ctx, requestLogger.With(zap.Int64("user_id", userID)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth requires authentication for the endpoint
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return am.Authenticate(true)
}

// OptionalAuth provides optional authentication for the endpoint
func (am *AuthMiddleware) OptionalAuth() func(http.Handler) http.Handler {
	return am.Authenticate(false)
}

// ===============================
// AUTHORIZATION MIDDLEWARE
// ===============================

// RequireRole requires one of roles. It must run after RequireAuth.
func (am *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := contextutils.GetUser(r.Context())
			if user == nil {
				am.builder.WriteError(w, r, services.NewUnauthorizedError("Authentication required"))
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			GetRequestLogger(r.Context()).Warn("Role check failed",
				zap.String("role", user.Role),
				zap.Strings("required", roles),
			)
			am.builder.WriteError(w, r, services.NewForbiddenError("Insufficient role"))
		})
	}
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if r.Method == http.MethodGet && strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get(queryTokenParam)
	}
	return ""
}
