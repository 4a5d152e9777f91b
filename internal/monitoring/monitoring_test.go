package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDashboard_GetSystemHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]bool // name -> critical
		failing  string
		expected string
	}{
		{"all healthy", map[string]bool{"database": true, "cache": false}, "", StatusHealthy},
		{"non critical failure degrades", map[string]bool{"database": true, "cache": false}, "cache", StatusDegraded},
		{"critical failure", map[string]bool{"database": true, "cache": false}, "database", StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDashboard(zap.NewNop(), "test", "test")
			for name, critical := range tt.checks {
				check := ok
				if name == tt.failing {
					check = fail
				}
				d.Register(name, critical, check)
			}

			health := d.GetSystemHealth(context.Background())
			assert.Equal(t, tt.expected, health.Status)
			assert.Len(t, health.Components, len(tt.checks))
			if tt.failing != "" {
				assert.Equal(t, "connection refused", health.Components[tt.failing].Error)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("doclib_test", prometheus.NewRegistry())

	m.RecordEngagement("favorite")
	m.RecordEngagement("favorite")
	m.RecordNotification("new_rating", nil)
	m.RecordNotification("new_rating", errors.New("boom"))
	m.ObserveQuery("exec", 5*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EngagementEvents.WithLabelValues("favorite")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("new_rating")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsFailed.WithLabelValues("new_rating")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("exec")))

	t.Run("nil metrics are a no-op", func(t *testing.T) {
		var nilMetrics *Metrics
		assert.NotPanics(t, func() {
			nilMetrics.RecordEngagement("view")
			nilMetrics.ObserveHTTP("GET", "/", 200, time.Millisecond)
		})
	})
}
