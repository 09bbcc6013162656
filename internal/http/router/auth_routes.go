package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
)

// registerAuthRoutes: login first-party. Login con rate limit por IP.
func registerAuthRoutes(r chi.Router, d Deps) {
	c := d.Auth
	if c == nil {
		return
	}
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.With(mw.Std(rateLimit(d.LoginLimiter, "login", d))...).Post("/login", c.Session.Login)
		r.Post("/refresh", c.Session.Refresh)
		r.Post("/logout", c.Session.Logout)
		r.With(mw.RequireSession(d.Authenticator)).Get("/me", c.Session.Me)
	})
}
