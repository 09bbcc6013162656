package middlewares

import (
	"net/http"
	"slices"

	"github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/store"
)

// Permisos de rutas administrativas (API keys).
const (
	PermAPIKeysRead       = "api_keys:read"
	PermAPIKeysWrite      = "api_keys:write"
	PermOAuthClientsRead  = "oauth2_clients:read"
	PermOAuthClientsWrite = "oauth2_clients:write"
)

// Allowed aplica las reglas de autorización sobre un principal ya autenticado:
//
//   - API key: "*" pasa; si no, permission debe ser no vacío y estar en la key.
//   - Luego el rol del usuario debe estar en roles (vacío = cualquier rol).
func Allowed(p *Principal, roles []string, permission string) bool {
	if p == nil || p.User == nil {
		return false
	}
	if p.Method == MethodAPIKey {
		if p.APIKey == nil {
			return false
		}
		perms := p.APIKey.Permissions
		if !slices.Contains(perms, store.WildcardPermission) {
			if permission == "" || !slices.Contains(perms, permission) {
				return false
			}
		}
	}
	return len(roles) == 0 || slices.Contains(roles, p.User.Role)
}

// Authorize es el middleware RBAC. Debe ir después de RequireAuth.
func Authorize(roles []string, permission string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if !Allowed(p, roles, permission) {
				errors.WriteError(w, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminRoles son los roles con acceso a la API de administración del tenant.
var AdminRoles = []string{store.RoleTenantAdmin, store.RoleSuperAdmin}
