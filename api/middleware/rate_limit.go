package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/frescamar/reefertrack-backend/api/responses"
	"github.com/frescamar/reefertrack-backend/pkg/config"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
	"github.com/frescamar/reefertrack-backend/pkg/logger"
)

// rateLimiter is the slice of the redis client the limiter needs.
type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

var mutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// RateLimit throttles mutating requests per caller with a fixed window. Reads
// pass through untouched; a limiter outage fails open.
func RateLimit(limiter rateLimiter, cfg config.RateLimitConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !mutatingMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			scope := "mutation:" + callerKey(r)
			allowed, count, err := limiter.FixedWindowAllow(r.Context(), scope, int64(cfg.MutationLimit), cfg.MutationWindow)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "rate limiter unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests").
						WithDetails(map[string]any{"count": count, "window": cfg.MutationWindow.String()}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if actor := ActorFromContext(r.Context()); actor != "" {
		return fmt.Sprintf("actor:%s", actor)
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}
