// Package app arma el servidor: services, controllers y router sobre las
// dependencias de runtime (store, cache, llaves, métricas).
package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/authflow/internal/cache"
	"github.com/dropDatabas3/authflow/internal/config"
	adminctrl "github.com/dropDatabas3/authflow/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/authflow/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/authflow/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/authflow/internal/http/controllers/oauth"
	oidcctrl "github.com/dropDatabas3/authflow/internal/http/controllers/oidc"
	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
	"github.com/dropDatabas3/authflow/internal/http/router"
	adminsvc "github.com/dropDatabas3/authflow/internal/http/services/admin"
	authsvc "github.com/dropDatabas3/authflow/internal/http/services/auth"
	healthsvc "github.com/dropDatabas3/authflow/internal/http/services/health"
	oauthsvc "github.com/dropDatabas3/authflow/internal/http/services/oauth"
	oidcsvc "github.com/dropDatabas3/authflow/internal/http/services/oidc"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/metrics"
	"github.com/dropDatabas3/authflow/internal/rate"
	"github.com/dropDatabas3/authflow/internal/security/password"
	"github.com/dropDatabas3/authflow/internal/store"
)

// Deps son las dependencias ya abiertas que necesita el App.
type Deps struct {
	Config  *config.Config
	Store   store.Store
	Cache   cache.Client
	Keys    *jwtx.KeyPair
	Metrics *metrics.Metrics

	// Opcionales.
	TokenLimiter rate.Limiter
	LoginLimiter rate.Limiter
	Now          func() time.Time
}

// App es la aplicación cableada.
type App struct {
	Handler  http.Handler
	Signer   *jwtx.Signer
	Sessions *jwtx.SessionIssuer
	OAuth    oauthsvc.Services
}

// New cablea services, controllers y rutas.
func New(d Deps) (*App, error) {
	if d.Config == nil || d.Store == nil || d.Cache == nil || d.Keys == nil {
		return nil, errors.New("app: config, store, cache and keys are required")
	}
	cfg := d.Config

	signer, err := jwtx.NewSigner(d.Keys)
	if err != nil {
		return nil, err
	}
	sessions := jwtx.NewSessionIssuer(cfg.Issuer, signer)
	sessions.SessionTTL = cfg.Auth.SessionTTL
	sessions.RefreshTTL = cfg.Auth.RefreshTTL
	if d.Now != nil {
		sessions.WithClock(d.Now)
	}

	// 1. Services
	oauthServices := oauthsvc.NewServices(oauthsvc.Deps{
		Store: d.Store,
		Cache: d.Cache,
		Config: oauthsvc.Config{
			AuthRequestTTL:      cfg.OAuth.AuthRequestTTL,
			CodeTTL:             cfg.OAuth.CodeTTL,
			AccessTTL:           cfg.OAuth.AccessTTL,
			RefreshTTL:          cfg.OAuth.RefreshTTL,
			RotateRefreshTokens: cfg.OAuth.RotateRefreshTokens,
			StoreTimeout:        cfg.OAuth.StoreTimeout,
			ConsentURL:          cfg.OAuth.ConsentURL,
		},
		Now: d.Now,
	})
	oidcServices := oidcsvc.NewServices(oidcsvc.Deps{
		Issuer: cfg.Issuer,
		JWKS:   jwtx.NewJWKS(d.Keys),
		Store:  d.Store,
	})
	adminServices := adminsvc.NewServices(adminsvc.Deps{Store: d.Store, Now: d.Now})
	authServices := authsvc.NewServices(authsvc.Deps{
		Store:    d.Store,
		Issuer:   sessions,
		Password: password.New(cfg.Auth.BcryptCost),
	})
	healthServices := healthsvc.NewServices(healthsvc.Deps{
		Store:   d.Store,
		Cache:   d.Cache,
		Signer:  signer,
		Version: cfg.App.Version,
	})

	// 2. Controllers
	authn := &mw.Authenticator{
		Users:        d.Store,
		APIKeys:      d.Store,
		Sessions:     sessions,
		CookieName:   cfg.Auth.CookieName,
		AllowBearer:  cfg.Auth.AllowBearerJW,
		TouchTimeout: cfg.Auth.TouchTimeout,
	}

	// 3. Rutas
	handler := router.New(router.Deps{
		Authenticator: authn,
		OAuth: oauthctrl.NewControllers(oauthServices, oauthctrl.ControllerDeps{
			LoginURL: cfg.OAuth.LoginURL,
			Metrics:  d.Metrics,
		}),
		OIDC:  oidcctrl.NewControllers(oidcServices),
		Admin: adminctrl.NewControllers(adminServices),
		Auth: authctrl.NewControllers(authServices, authctrl.CookieConfig{
			Name:       cfg.Auth.CookieName,
			Secure:     cfg.Auth.CookieSecure,
			Domain:     cfg.Auth.CookieDomain,
			TrustProxy: cfg.Server.TrustProxyHeads,
		}),
		Health:       healthctrl.NewControllers(healthServices),
		Metrics:      d.Metrics,
		TokenLimiter: d.TokenLimiter,
		LoginLimiter: d.LoginLimiter,
		TrustProxy:   cfg.Server.TrustProxyHeads,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	return &App{
		Handler:  handler,
		Signer:   signer,
		Sessions: sessions,
		OAuth:    oauthServices,
	}, nil
}
