// ===============================
// FILE: internal/handlers/api/v1/auth/auth_controller.go
// ===============================

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"time"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/middleware"
	"doclib/internal/response"
	"doclib/internal/services"

	"go.uber.org/zap"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

// AuthController handles authentication API endpoints
type AuthController struct {
	auth            services.AuthService
	logger          *zap.Logger
	responseBuilder *response.Builder
	secureCookies   bool
}

// NewAuthController creates a new authentication controller
func NewAuthController(
	auth services.AuthService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
	secureCookies bool,
) *AuthController {
	return &AuthController{
		auth:            auth,
		logger:          logger,
		responseBuilder: responseBuilder,
		secureCookies:   secureCookies,
	}
}

// ===============================
// AUTHENTICATION ENDPOINTS
// ===============================

// Register handles user registration - POST /api/v1/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetRequestLogger(r.Context()).With(zap.String("endpoint", "register"))

	var req services.RegisterRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	authResp, err := c.auth.Register(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	logger.Info("User registered", zap.Int64("user_id", authResp.User.ID), zap.String("role", authResp.User.Role))
	c.responseBuilder.WriteCreated(w, r, authResp)
}

// Login handles user authentication - POST /api/v1/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	authResp, err := c.auth.Login(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, authResp)
}

// Me returns the current user - GET /api/v1/auth/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	user, err := c.auth.Me(r.Context(), actor.UserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, user)
}

// ===============================
// GOOGLE OAUTH
// ===============================

// GoogleLogin redirects to Google's consent page - GET /api/v1/auth/google/login
func (c *AuthController) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !c.auth.GoogleEnabled() {
		c.responseBuilder.WriteError(w, r, services.NewNotFoundError("google sign-in is not enabled"))
		return
	}

	state, err := newState()
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewInternalErrorWithCause("failed to create oauth state", err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/v1/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, c.auth.GoogleAuthURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback completes the OAuth flow - GET /api/v1/auth/google/callback
func (c *AuthController) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("google sign-in was cancelled"))
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(query.Get("state"))) != 1 {
		middleware.GetRequestLogger(r.Context()).Warn("OAuth state mismatch")
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("invalid oauth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Path:   "/api/v1/auth/google",
		MaxAge: -1,
	})

	authResp, err := c.auth.GoogleCallback(r.Context(), query.Get("code"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, authResp)
}

func newState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
