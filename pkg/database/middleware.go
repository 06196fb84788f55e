package database

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/yourorg/estatehub/internal/observability/metrics"
)

// Acquirer hands out dedicated connections
type Acquirer interface {
	Acquire(ctx context.Context) (*sqlx.Conn, error)
}

// ConnMiddleware holds one pooled connection for the lifetime of each request.
// The connection is attached to the request context and handed back to the pool
// when the handler returns, whatever the outcome.
func ConnMiddleware(pool Acquirer, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := pool.Acquire(r.Context())
			if err != nil {
				logger.Error("failed to acquire database connection",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"error":"database unavailable","kind":"unavailable"}`))
				return
			}
			metrics.ConnAcquired()
			defer func() {
				if err := conn.Close(); err != nil {
					logger.Warn("failed to release database connection", slog.String("error", err.Error()))
				}
				metrics.ConnReleased()
			}()

			next.ServeHTTP(w, r.WithContext(WithConn(r.Context(), conn)))
		})
	}
}
