package middlewares

import (
	"net/http"
	"strconv"

	"github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/http/helpers"
	"github.com/dropDatabas3/authflow/internal/metrics"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	"github.com/dropDatabas3/authflow/internal/rate"
)

// RateLimitConfig configura WithRateLimit.
type RateLimitConfig struct {
	Limiter    rate.Limiter
	Bucket     string // prefijo de clave y etiqueta de métrica: "token", "login"
	TrustProxy bool
	Metrics    *metrics.Metrics
}

// WithRateLimit limita por IP de cliente. Un error del limiter deja pasar el
// request: la disponibilidad del login no depende de Redis.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.Bucket + ":" + helpers.ClientIP(r, cfg.TrustProxy)
			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error", logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(res.RetryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				cfg.Metrics.RateLimited(cfg.Bucket)
				errors.WriteError(w, errors.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
