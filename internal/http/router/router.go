// Package router arma el árbol de rutas chi del servidor.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/authflow/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/authflow/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/authflow/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/authflow/internal/http/controllers/oauth"
	oidcctrl "github.com/dropDatabas3/authflow/internal/http/controllers/oidc"
	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
	"github.com/dropDatabas3/authflow/internal/metrics"
	"github.com/dropDatabas3/authflow/internal/rate"
)

// Deps contiene todo lo necesario para montar las rutas.
type Deps struct {
	Authenticator *mw.Authenticator

	OAuth  *oauthctrl.Controllers
	OIDC   *oidcctrl.Controllers
	Admin  *adminctrl.Controllers
	Auth   *authctrl.Controllers
	Health *healthctrl.Controllers

	Metrics *metrics.Metrics

	// Opcionales: nil deshabilita el rate limit del bucket.
	TokenLimiter rate.Limiter
	LoginLimiter rate.Limiter

	TrustProxy   bool
	MaxBodyBytes int64
}

// New devuelve el handler raíz.
//
// Orden: request id, recover y métricas para todo; logging y headers de
// seguridad para todo salvo los probes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Std(mw.WithRequestID(), mw.WithRecover())...)
	r.Use(d.Metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	registerHealthRoutes(r, d)

	r.Group(func(r chi.Router) {
		r.Use(mw.Std(mw.WithLogging(d.TrustProxy), mw.WithSecurityHeaders(), mw.WithMaxBody(d.MaxBodyBytes))...)

		registerOAuthRoutes(r, d)
		registerOIDCRoutes(r, d)
		registerAuthRoutes(r, d)
		registerAdminRoutes(r, d)
	})
	return r
}

func registerHealthRoutes(r chi.Router, d Deps) {
	if d.Health != nil {
		r.Get("/healthz", d.Health.Health.Healthz)
		r.Get("/readyz", d.Health.Health.Readyz)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
}

func rateLimit(limiter rate.Limiter, bucket string, d Deps) mw.Middleware {
	if limiter == nil {
		return nil
	}
	return mw.WithRateLimit(mw.RateLimitConfig{
		Limiter:    limiter,
		Bucket:     bucket,
		TrustProxy: d.TrustProxy,
		Metrics:    d.Metrics,
	})
}
