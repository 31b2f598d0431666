package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/lumencart/storefront-backend/api/responses"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit applies a per-caller fixed-window limit to the wrapped routes.
// Limits are keyed by customer when signed in, otherwise by guest session.
func RateLimit(limiter rateLimiter, scope string, limit int64, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			caller := CustomerIDFromContext(r.Context())
			if caller == "" {
				caller = SessionIDFromContext(r.Context())
			}
			if caller == "" {
				caller = r.RemoteAddr
			}

			allowed, _, err := limiter.FixedWindowAllow(r.Context(), scope+":"+caller, limit, window)
			if err != nil {
				// Fail open: a limiter outage should not take the storefront down.
				if logg != nil {
					logg.Error(r.Context(), "rate_limit.check_failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
