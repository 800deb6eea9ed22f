package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/infra/logging"
	"medstaff-dashboard/internal/infra/metrics"
	"medstaff-dashboard/internal/infra/redis"
)

// Limiter is a fixed-window counter such as redis.RateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit caps requests per authenticated user for one action. Limiter failures let
// the request through.
func RateLimit(l Limiter, action string, limit int, window time.Duration, onError func(http.ResponseWriter, *http.Request, error), logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := logging.UserID(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}
			ok, err := l.Allow(r.Context(), redis.UserActionKey(userID, action), limit, window)
			if err != nil {
				logging.With(r.Context(), logger).Warn().Err(err).Msg("rate limiter unavailable; allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				metrics.IncRateLimited(action)
				onError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
