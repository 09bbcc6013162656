package middlewares

import (
	"context"

	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/store"
)

type ctxKey string

const (
	ctxPrincipalKey ctxKey = "principal"
	ctxRequestIDKey ctxKey = "request_id"
)

// Métodos de autenticación.
const (
	MethodSession = "session"
	MethodAPIKey  = "api_key"
)

// Principal es el sujeto autenticado del request.
type Principal struct {
	User   *store.User
	Method string

	// Sólo uno de los dos según Method.
	APIKey  *store.APIKey
	Session *jwtx.SessionClaims
}

// TenantID del principal: el de la API key o el del usuario.
func (p *Principal) TenantID() string {
	if p == nil {
		return ""
	}
	if p.APIKey != nil {
		return p.APIKey.TenantID
	}
	if p.User != nil {
		return p.User.TenantID
	}
	return ""
}

func (p *Principal) UserID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

// WithPrincipal inyecta el principal en el contexto.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// GetPrincipal devuelve nil si el request no pasó por el gate.
func GetPrincipal(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxPrincipalKey).(*Principal)
	return p
}

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, id)
}

// GetRequestID devuelve "" si no hay request id.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
