package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
)

// registerOAuthRoutes: authorize, consent (SPA) y token.
func registerOAuthRoutes(r chi.Router, d Deps) {
	c := d.OAuth
	if c == nil {
		return
	}
	a := d.Authenticator

	// Sin sesión el controller redirige al login; por eso OptionalAuth.
	r.With(mw.Std(mw.OptionalAuth(a), mw.WithNoStore())...).Get("/oauth2/authorize", c.Authorize.Authorize)
	r.With(mw.Std(mw.OptionalAuth(a), mw.WithNoStore())...).Get("/authorize", c.Authorize.Authorize)

	r.Route("/api/oauth2", func(r chi.Router) {
		r.Use(mw.Std(mw.RequireSession(a), mw.WithNoStore())...)
		r.Get("/auth-request/{request_id}", c.Consent.GetRequest)
		r.Post("/consent", c.Consent.Decide)
	})

	r.With(mw.Std(rateLimit(d.TokenLimiter, "token", d), mw.WithNoStore())...).Post("/oauth2/token", c.Token.Token)
}
