// Package middleware carries the correlation id that ties a request's log
// lines, queue tasks, and query-log entries together.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const headerCorrelationID = "X-Correlation-ID"

type key int

// CorrelationKey is the context key under which the correlation id travels.
const CorrelationKey key = 0

// CorrelationID accepts a caller-supplied X-Correlation-ID header or mints a
// fresh id, stores it in the request context, and echoes it on the response.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerCorrelationID)
		if id == "" {
			id = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), CorrelationKey, id)
		w.Header().Set(headerCorrelationID, id)

		slog.Info("request received", "method", r.Method, "path", r.URL.Path, "correlation_id", id) // #nosec G706 -- r.URL.Path is parsed by Go's net/http
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "correlation_id", id, "duration", time.Since(start)) // #nosec G706
	})
}

// GetCorrelationID reads the id back out of a context, for responses and
// queue payloads that report it to the caller.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationKey).(string); ok {
		return id
	}
	return "unknown"
}

// WithCorrelationID attaches an id to a context outside the HTTP path, such
// as when a queue consumer resumes work started by an earlier request.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationKey, id)
}
