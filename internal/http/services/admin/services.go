// Package admin provee los services de la API de administración del tenant:
// clients OAuth2 y API keys. Toda operación queda acotada al tenant del actor.
package admin

import (
	"errors"
	"time"

	"github.com/dropDatabas3/authflow/internal/store"
)

var (
	ErrTenantRequired = errors.New("tenant required")
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrEscalation     = errors.New("permissions exceed caller's")
)

// Actor es quien ejecuta la operación (del principal autenticado).
type Actor struct {
	TenantID string
	UserID   string
	Method   string
	// Permisos de la API key cuando Method es api_key; nil para sesiones.
	Permissions []string
}

// Deps contiene las dependencias de los services admin.
type Deps struct {
	Store store.Store
	Now   func() time.Time
}

// Services agrupa los services admin.
type Services struct {
	Clients ClientService
	APIKeys APIKeyService
}

func NewServices(d Deps) Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	return Services{
		Clients: &clientService{store: d.Store},
		APIKeys: &apiKeyService{store: d.Store, now: d.Now},
	}
}
