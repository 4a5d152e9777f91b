// File: internal/monitoring/dashboard.go
package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck probes one dependency. Returning an error marks it unhealthy.
type HealthCheck func(ctx context.Context) error

// Dashboard aggregates dependency health for the /health endpoint
type Dashboard struct {
	checks      map[string]HealthCheck
	critical    map[string]bool
	logger      *zap.Logger
	startTime   time.Time
	version     string
	environment string
	timeout     time.Duration
}

// ComponentHealth represents health of a system component
type ComponentHealth struct {
	Status       string        `json:"status"`
	LastCheck    time.Time     `json:"lastCheck"`
	Error        string        `json:"error,omitempty"`
	ResponseTime time.Duration `json:"responseTime"`
}

// SystemHealthResponse represents overall system health
type SystemHealthResponse struct {
	Status      string                     `json:"status"`
	Timestamp   time.Time                  `json:"timestamp"`
	Uptime      string                     `json:"uptime"`
	Version     string                     `json:"version"`
	Environment string                     `json:"environment"`
	Components  map[string]ComponentHealth `json:"components"`
}

// NewDashboard creates a new monitoring dashboard
func NewDashboard(logger *zap.Logger, version, environment string) *Dashboard {
	return &Dashboard{
		checks:      make(map[string]HealthCheck),
		critical:    make(map[string]bool),
		logger:      logger,
		startTime:   time.Now(),
		version:     version,
		environment: environment,
		timeout:     3 * time.Second,
	}
}

// Register adds a named check. A failing critical check makes the whole
// system unhealthy, a failing non-critical one only degrades it.
func (d *Dashboard) Register(name string, critical bool, check HealthCheck) {
	d.checks[name] = check
	d.critical[name] = critical
}

// GetSystemHealth runs every check concurrently
func (d *Dashboard) GetSystemHealth(ctx context.Context) *SystemHealthResponse {
	start := time.Now()

	response := &SystemHealthResponse{
		Timestamp:   start,
		Uptime:      time.Since(d.startTime).String(),
		Version:     d.version,
		Environment: d.environment,
		Components:  make(map[string]ComponentHealth, len(d.checks)),
	}

	results := make([]ComponentHealth, 0, len(d.checks))
	names := make([]string, 0, len(d.checks))
	for name := range d.checks {
		names = append(names, name)
		results = append(results, ComponentHealth{})
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Checks never return errors to the group; failures are recorded per component.
	var g errgroup.Group
	for i, name := range names {
		i, check := i, d.checks[name]
		g.Go(func() error {
			checkStart := time.Now()
			component := ComponentHealth{Status: StatusHealthy, LastCheck: checkStart}
			if err := check(ctx); err != nil {
				component.Status = StatusUnhealthy
				component.Error = err.Error()
			}
			component.ResponseTime = time.Since(checkStart)
			results[i] = component
			return nil
		})
	}
	_ = g.Wait()

	response.Status = StatusHealthy
	for i, name := range names {
		response.Components[name] = results[i]
		if results[i].Status == StatusHealthy {
			continue
		}
		if d.critical[name] {
			response.Status = StatusUnhealthy
		} else if response.Status == StatusHealthy {
			response.Status = StatusDegraded
		}
	}

	d.logger.Debug("System health check completed",
		zap.String("status", response.Status),
		zap.Duration("check_duration", time.Since(start)),
		zap.Int("components", len(response.Components)),
	)

	return response
}
