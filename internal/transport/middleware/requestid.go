package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personal-finance/pkg/logger"
	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

type traceKey struct{}

// RequestID reuses an incoming X-Trace-ID or mints one, and scopes the request logger to it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), traceKey{}, traceID)
		ctx = logger.With(ctx, "trace_id", traceID)

		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
