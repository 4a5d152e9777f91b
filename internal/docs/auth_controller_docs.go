// Package docs holds the Swagger annotations and the registered OpenAPI
// document served at /swagger/.
package docs

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Aggregated dependency health. Degraded still answers 200.
// @Tags System
// @Produce json
// @Success 200 {object} HealthCheckResponse "Healthy or degraded"
// @Failure 503 {object} HealthCheckResponse "A critical dependency is down"
// @Router /health [get]
func _() {}

// Register godoc
// @Summary Register a new user
// @Description Creates a password account and returns a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param registerRequest body RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse "User registered successfully"
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Router /auth/register [post]
func _() {}

// Login godoc
// @Summary Authenticate a user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param loginRequest body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse "Authentication successful"
// @Failure 400 {object} ErrorResponse "Invalid request format"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 429 {object} ErrorResponse "Too many login attempts"
// @Router /auth/login [post]
func _() {}

// Me godoc
// @Summary Get the current user
// @Security BearerAuth
// @Tags Authentication
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func _() {}

// GoogleLogin godoc
// @Summary Start Google sign-in
// @Description Sets a state cookie and redirects to the Google consent screen
// @Tags Authentication
// @Success 307 "Redirect to Google"
// @Failure 404 {object} ErrorResponse "Google sign-in is not configured"
// @Router /auth/google/login [get]
func _() {}

// GoogleCallback godoc
// @Summary Complete Google sign-in
// @Tags Authentication
// @Produce json
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse "State mismatch or missing code"
// @Failure 401 {object} ErrorResponse "Google rejected the code"
// @Router /auth/google/callback [get]
func _() {}
