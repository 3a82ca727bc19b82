// Package middleware holds the HTTP middleware chain the rank server
// mounts in front of its handlers: request IDs, Prometheus metrics, and a
// per-request timeout.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Algolizen-Inc/LinkRanker/pkg/metrics"
)

// Metrics records request counts by method/path/status, latency histograms,
// and an in-flight gauge.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := metricPath(r.URL.Path)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// statusRecorder captures the status code written by the handler. The
// first WriteHeader wins, matching net/http behavior.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		rec.wroteHeader = true
	}
	return rec.ResponseWriter.Write(b)
}

// metricPath bounds label cardinality. The rank API exposes only fixed
// routes, so anything else (scanners, typos) collapses into one label.
func metricPath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/"), path == "/healthz", path == "/readyz":
		return path
	default:
		return "other"
	}
}
