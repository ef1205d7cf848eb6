package middleware

import (
	"net/http"

	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID takes the inbound request id or generates one, and carries it
// through the log context and the response header.
func (h *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			if id, err := uuid.New(); err == nil {
				requestID = id.String()
			}
		}

		w.Header().Set(requestIDHeader, requestID)

		ctx := wrap.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
