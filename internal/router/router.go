package router

import (
	"net/http"
	"strings"

	"doclib/internal/config"
	_ "doclib/internal/docs" // registers the OpenAPI spec with swag
	"doclib/internal/handlers/web"
	"doclib/internal/middleware"
	"doclib/internal/monitoring"
	"doclib/internal/response"
	"doclib/internal/services"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Dependencies carries everything the HTTP surface is built from
type Dependencies struct {
	Config          *config.Config
	Services        *services.ServiceCollection
	AuthMiddleware  *middleware.AuthMiddleware
	ResponseBuilder *response.Builder
	Hub             *web.NotificationHub
	Dashboard       *monitoring.Dashboard
	Metrics         *monitoring.Metrics
	Gatherer        prometheus.Gatherer

	// RateLimiter guards every route; AuthLimiter additionally guards
	// login and registration. Either may be nil.
	RateLimiter *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter

	Logger *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(deps *Dependencies) http.Handler {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.StrictSlash(false)
	r.NotFoundHandler = notFoundHandler(deps.ResponseBuilder)
	r.MethodNotAllowedHandler = methodNotAllowedHandler(deps.ResponseBuilder)

	// Route-aware middleware has to run inside mux so the matched route
	// template is available.
	r.Use(middleware.Metrics(deps.Metrics))

	// Ops
	r.Handle("/health", web.HealthHandler(deps.Dashboard, logger)).Methods(http.MethodGet, http.MethodHead)
	if deps.Gatherer != nil {
		r.Handle("/metrics", web.MetricsHandler(deps.Gatherer)).Methods(http.MethodGet)
	}
	if cfg.Server.EnableSwagger {
		swagger := middleware.DefaultSwaggerConfig()
		swagger.Username = cfg.Server.SwaggerUser
		swagger.Password = cfg.Server.SwaggerPassword
		r.Handle("/swagger", http.RedirectHandler("/swagger/", http.StatusMovedPermanently))
		r.PathPrefix("/swagger/").Handler(middleware.SwaggerHandler(swagger)).Methods(http.MethodGet)
	}
	if deps.Hub != nil {
		r.Handle("/ws/notifications", deps.AuthMiddleware.RequireAuth()(deps.Hub)).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	AddAPIv1Routes(api, deps)

	handler := globalChain(deps).Handler(r)

	logger.Info("Router setup completed",
		zap.Bool("swagger", cfg.Server.EnableSwagger),
		zap.Bool("websocket", deps.Hub != nil),
		zap.Bool("rate_limit", deps.RateLimiter != nil),
	)
	return handler
}

// globalChain wraps the whole router, so unmatched routes and CORS
// preflights still get request IDs, logs and headers.
func globalChain(deps *Dependencies) chi.Middlewares {
	cfg := deps.Config

	security := middleware.DefaultSecurityConfig()
	security.AllowedOrigins = cfg.Server.CORSOrigins
	if cfg.Server.MaxBodyBytes > 0 {
		security.MaxBodyBytes = cfg.Server.MaxBodyBytes
	}

	recovery := middleware.DefaultRecoveryConfig()
	recovery.Environment = cfg.Server.Environment
	recovery.EnableStackTrace = !cfg.IsProduction()

	chain := chi.Chain(
		chimw.RealIP,
		middleware.RequestID(deps.Logger),
		middleware.Recovery(deps.ResponseBuilder, recovery),
		middleware.StructuredLogging(middleware.DefaultLoggingConfig()),
		middleware.SecurityHeaders(security),
		middleware.CORS(security),
	)
	if deps.RateLimiter != nil {
		chain = append(chain, deps.RateLimiter.Middleware())
	}
	return append(chain, middleware.MaxBodySize(security.MaxBodyBytes))
}

func notFoundHandler(builder *response.Builder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		builder.WriteError(w, r, services.NewNotFoundError("Route not found"))
	})
}

func methodNotAllowedHandler(builder *response.Builder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		builder.WriteError(w, r, &services.ServiceError{
			Type:       services.ErrTypeValidation,
			Message:    "Method " + strings.ToUpper(r.Method) + " not allowed",
			Code:       "METHOD_NOT_ALLOWED",
			StatusCode: http.StatusMethodNotAllowed,
		})
	})
}
