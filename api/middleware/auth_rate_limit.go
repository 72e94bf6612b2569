package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/milletmart/milletmart-backend/api/responses"
	"github.com/milletmart/milletmart-backend/pkg/config"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
	"github.com/milletmart/milletmart-backend/pkg/logger"
	redisclient "github.com/milletmart/milletmart-backend/pkg/redis"
)

type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope, id string) string
}

// AuthRateLimit throttles admin login attempts per client IP using Redis
// counters. A nil store or zero limit disables the middleware.
func AuthRateLimit(cfg config.AuthRateLimitConfig, store *redisclient.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	var limiter rateLimiterStore
	if store != nil {
		limiter = store
	}
	return authRateLimit(cfg, limiter, logg)
}

func authRateLimit(cfg config.AuthRateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.LoginIPLimit <= 0 || cfg.LoginWindow <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			key := store.RateLimitKey("login_ip", ip)
			count, err := store.IncrWithTTL(ctx, key, cfg.LoginWindow)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}

			if count > int64(cfg.LoginIPLimit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"ip":             ip,
						"attempts":       count,
						"limit":          cfg.LoginIPLimit,
						"window_seconds": int(cfg.LoginWindow.Seconds()),
					})
					logg.Warn(logCtx, "auth.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
