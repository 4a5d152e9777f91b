// File: internal/handlers/web/health_handlers.go
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"doclib/internal/monitoring"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthHandler reports dependency health. Degraded still answers 200 so
// load balancers keep routing while a non-critical dependency is down.
func HealthHandler(dashboard *monitoring.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		health := dashboard.GetSystemHealth(ctx)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		switch health.Status {
		case monitoring.StatusHealthy, monitoring.StatusDegraded:
			w.WriteHeader(http.StatusOK)
		case monitoring.StatusUnhealthy:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}

		if err := json.NewEncoder(w).Encode(health); err != nil {
			logger.Error("Failed to encode health response", zap.Error(err))
		}
	}
}

// MetricsHandler exposes the Prometheus registry
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
