package oauth

import (
	svc "github.com/dropDatabas3/authflow/internal/http/services/oauth"
	"github.com/dropDatabas3/authflow/internal/metrics"
)

// ControllerDeps contiene dependencias adicionales para los controllers.
type ControllerDeps struct {
	LoginURL string
	Metrics  *metrics.Metrics
}

// Controllers agrupa todos los controllers del dominio OAuth.
type Controllers struct {
	Authorize *AuthorizeController
	Consent   *ConsentController
	Token     *TokenController
}

// NewControllers crea el agregador de controllers OAuth.
func NewControllers(s svc.Services, deps ControllerDeps) *Controllers {
	return &Controllers{
		Authorize: NewAuthorizeController(s.Authorize, deps.LoginURL),
		Consent:   NewConsentController(s.Consent),
		Token:     NewTokenController(s.Token, deps.Metrics),
	}
}
