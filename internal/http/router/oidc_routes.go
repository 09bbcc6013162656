package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
)

// registerOIDCRoutes: discovery y JWKS públicos, userinfo con Bearer.
func registerOIDCRoutes(r chi.Router, d Deps) {
	c := d.OIDC
	if c == nil {
		return
	}
	r.Get("/.well-known/openid-configuration", c.Discovery.Discovery)
	r.Get("/.well-known/jwks.json", c.JWKS.JWKS)

	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Get("/oauth2/userinfo", c.UserInfo.UserInfo)
		r.Post("/oauth2/userinfo", c.UserInfo.UserInfo)
	})
}
