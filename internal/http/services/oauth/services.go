package oauth

import (
	"time"

	"github.com/dropDatabas3/authflow/internal/cache"
	"github.com/dropDatabas3/authflow/internal/store"
)

// Config son los parámetros del flujo (bloque oauth del config).
type Config struct {
	AuthRequestTTL      time.Duration
	CodeTTL             time.Duration
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	RotateRefreshTokens bool
	StoreTimeout        time.Duration
	ConsentURL          string
}

// Deps contiene las dependencias para crear los services OAuth.
type Deps struct {
	Store  store.Store
	Cache  cache.Client
	Config Config
	Now    func() time.Time
}

// Services agrupa todos los services del dominio OAuth.
type Services struct {
	Authorize AuthorizeService
	Consent   ConsentService
	Token     TokenService
	Requests  *RequestStore
}

// NewServices crea el agregador de services OAuth.
func NewServices(d Deps) Services {
	requests := NewRequestStore(d.Cache, d.Config.AuthRequestTTL)
	return Services{
		Authorize: NewAuthorizeService(AuthorizeDeps{
			Clients:    d.Store,
			Requests:   requests,
			ConsentURL: d.Config.ConsentURL,
			Now:        d.Now,
		}),
		Consent: NewConsentService(ConsentDeps{
			Clients:  d.Store,
			Codes:    d.Store,
			Requests: requests,
			CodeTTL:  d.Config.CodeTTL,
			Now:      d.Now,
		}),
		Token: NewTokenService(TokenDeps{
			Store:        d.Store,
			AccessTTL:    d.Config.AccessTTL,
			RefreshTTL:   d.Config.RefreshTTL,
			Rotate:       d.Config.RotateRefreshTokens,
			StoreTimeout: d.Config.StoreTimeout,
			Now:          d.Now,
		}),
		Requests: requests,
	}
}
