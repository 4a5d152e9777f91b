// file: internal/middleware/metrics.go
package middleware

import (
	"net/http"
	"time"

	"doclib/internal/monitoring"

	"github.com/gorilla/mux"
)

// Metrics records request counts and latencies labelled by the matched
// route template, so /documents/42 and /documents/43 share a series.
func Metrics(metrics *monitoring.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			writer := newStatusRecorder(w)
			next.ServeHTTP(writer, r)
			metrics.ObserveHTTP(r.Method, routeLabel(r), writer.status, time.Since(start))
		})
	}
}

func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
