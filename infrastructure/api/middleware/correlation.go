package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/helixml/dagforge/internal/log"
)

// CorrelationIDHeader carries the correlation id on requests and responses.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID returns a middleware that tags each request with a
// correlation id, reusing the caller's header when present. The id is
// echoed in the response and attached to the request context for logging.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(log.WithCorrelationID(r.Context(), id)))
	})
}

// GetCorrelationID returns the correlation id of the request context.
func GetCorrelationID(ctx context.Context) string {
	return log.CorrelationID(ctx)
}
