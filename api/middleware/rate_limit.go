package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

type windowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ClientRateLimit throttles machine clients per API key, falling back to the
// client IP when the request was not key-authenticated.
func ClientRateLimit(name string, limit int, window time.Duration, limiter windowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 || window <= 0 || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := "ip:" + clientIP(r)
			if key := APIKeyFromContext(r.Context()); key != nil {
				subject = "key:" + key.ID.String()
			}
			if checkWindow(r.Context(), w, limiter, logg, name, subject, limit, window) {
				next.ServeHTTP(w, r)
			}
		})
	}
}
