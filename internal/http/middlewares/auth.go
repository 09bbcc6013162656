package middlewares

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/authflow/internal/http/errors"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
)

// =================================================================================
// AUTHENTICATION GATE
// =================================================================================

// Authenticator resuelve el principal de un request: API key, JWT de sesión
// por Bearer o cookie, en ese orden.
type Authenticator struct {
	Users    store.UserRepository
	APIKeys  store.APIKeyRepository
	Sessions *jwtx.SessionIssuer

	CookieName   string
	AllowBearer  bool          // JWT de sesión por Authorization además de cookie
	TouchTimeout time.Duration // timeout del update de last_used_at

	now func() time.Time
}

func (a *Authenticator) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

var errNoCredentials = stdErrors.New("no credentials")

func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[7:])
}

// Authenticate devuelve el principal o un AppError 401. errNoCredentials
// (envuelto) indica que el request no traía credenciales.
func (a *Authenticator) Authenticate(r *http.Request) (*Principal, error) {
	ctx := r.Context()
	raw := bearerToken(r)

	if tokens.LooksLikeAPIKey(raw) {
		return a.authenticateAPIKey(ctx, raw)
	}

	if raw == "" || !a.AllowBearer {
		raw = ""
		if a.CookieName != "" {
			if c, err := r.Cookie(a.CookieName); err == nil {
				raw = strings.TrimSpace(c.Value)
			}
		}
	}
	if raw == "" {
		return nil, errors.ErrUnauthorized.WithCause(errNoCredentials)
	}
	return a.authenticateSession(ctx, raw)
}

func (a *Authenticator) authenticateAPIKey(ctx context.Context, raw string) (*Principal, error) {
	log := logger.From(ctx).With(logger.Layer("middleware"), logger.Op("auth.APIKey"))

	key, err := a.APIKeys.GetAPIKeyByHash(ctx, tokens.HashSecret(raw))
	if err != nil {
		if !store.IsNotFound(err) {
			log.Error("api key lookup failed", logger.Err(err))
			return nil, errors.ErrInternalServerError.WithCause(err)
		}
		return nil, errors.ErrInvalidAPIKey
	}
	if !key.Usable(a.clock()) {
		return nil, errors.ErrInvalidAPIKey
	}

	user, err := a.Users.GetUserByID(ctx, key.CreatedBy)
	if err != nil || !user.IsActive {
		if err != nil && !store.IsNotFound(err) {
			log.Error("api key owner lookup failed", logger.APIKeyID(key.ID), logger.Err(err))
			return nil, errors.ErrInternalServerError.WithCause(err)
		}
		return nil, errors.ErrInvalidAPIKey.WithDetail("API key owner is inactive")
	}

	a.touch(key.ID)

	return &Principal{User: user, Method: MethodAPIKey, APIKey: key}, nil
}

// touch actualiza last_used_at fuera del request: un fallo sólo se loguea.
func (a *Authenticator) touch(keyID string) {
	timeout := a.TouchTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	at := a.clock()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.APIKeys.TouchAPIKey(ctx, keyID, at); err != nil {
			logger.L().Warn("api key touch failed",
				logger.Component("auth"), logger.APIKeyID(keyID), logger.Err(err))
		}
	}()
}

func (a *Authenticator) authenticateSession(ctx context.Context, raw string) (*Principal, error) {
	claims, err := a.Sessions.Decode(raw)
	if err != nil {
		return nil, errors.ErrInvalidSession.WithCause(err)
	}

	user, err := a.Users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, errors.ErrInvalidSession.WithDetail("user not found")
		}
		logger.From(ctx).Error("session user lookup failed",
			logger.Layer("middleware"), logger.UserID(claims.UserID), logger.Err(err))
		return nil, errors.ErrInternalServerError.WithCause(err)
	}
	if !user.IsActive {
		return nil, errors.ErrInvalidSession.WithDetail("user is inactive")
	}
	return &Principal{User: user, Method: MethodSession, Session: claims}, nil
}

// RequireAuth corta con 401 si no hay un principal válido. Las API keys sólo
// pasan si la ruta declara un permiso con Authorize; sin permiso usar
// RequireSession.
func RequireAuth(a *Authenticator) Middleware {
	return gate(a, false)
}

// RequireSession es RequireAuth para rutas sin permiso declarado: una API key
// válida recibe 403.
func RequireSession(a *Authenticator) Middleware {
	return gate(a, true)
}

func gate(a *Authenticator, sessionOnly bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				errors.WriteError(w, err)
				return
			}
			if sessionOnly && p.Method != MethodSession {
				logger.From(r.Context()).Warn("api key rejected on session-only route",
					logger.Layer("middleware"), logger.APIKeyID(p.APIKey.ID), logger.String("path", r.URL.Path))
				errors.WriteError(w, errors.ErrSessionRequired)
				return
			}
			ctx := WithPrincipal(r.Context(), p)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(
				logger.UserID(p.UserID()), logger.AuthMethod(p.Method)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth inyecta el principal si hay una sesión válida y sigue sin él
// en cualquier otro caso (el handler decide, p.ej. redirigir a login). Las
// API keys se ignoran.
func OptionalAuth(a *Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, err := a.Authenticate(r); err == nil && p.Method == MethodSession {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}
