package middleware

import (
	"net/http"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/pkg/metrics"
)

// Metrics records request counts, durations and in-flight gauge.
func (a *Middleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		metrics.HttpRequestsInFlight.WithLabelValues(types.ServiceName).Inc()
		defer metrics.HttpRequestsInFlight.WithLabelValues(types.ServiceName).Dec()

		rw := &responseWriterWrapper{
			ResponseWriter: w,
		}

		next.ServeHTTP(rw, r)

		status := rw.status
		if status == 0 {
			status = http.StatusOK
		}

		metrics.RecordHTTPRequest(types.ServiceName, r.Method, r.URL.Path, status, time.Since(start))
	})
}
