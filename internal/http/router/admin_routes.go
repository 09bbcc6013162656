package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
)

// registerAdminRoutes: administración tenant-scoped de clients y API keys.
// RequireAuth primero, luego RBAC por ruta.
func registerAdminRoutes(r chi.Router, d Deps) {
	c := d.Admin
	if c == nil {
		return
	}
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(mw.Std(mw.RequireAuth(d.Authenticator), mw.WithNoStore())...)

		r.Route("/oauth2/clients", func(r chi.Router) {
			r.With(mw.Authorize(mw.AdminRoles, mw.PermOAuthClientsRead)).Get("/", c.Clients.List)
			r.Group(func(r chi.Router) {
				r.Use(mw.Authorize(mw.AdminRoles, mw.PermOAuthClientsWrite))
				r.Post("/", c.Clients.Create)
				r.Delete("/{id}", c.Clients.Delete)
				r.Post("/{id}/rotate-secret", c.Clients.RotateSecret)
			})
		})

		r.Route("/api-keys", func(r chi.Router) {
			r.With(mw.Authorize(mw.AdminRoles, mw.PermAPIKeysRead)).Get("/", c.APIKeys.List)
			r.Group(func(r chi.Router) {
				r.Use(mw.Authorize(mw.AdminRoles, mw.PermAPIKeysWrite))
				r.Post("/", c.APIKeys.Create)
				r.Put("/{id}/revoke", c.APIKeys.Revoke)
				r.Delete("/{id}", c.APIKeys.Delete)
			})
		})
	})
}
