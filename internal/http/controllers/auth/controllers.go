// Package auth expone el login first-party (/api/auth/*).
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/http/helpers"
	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
	svc "github.com/dropDatabas3/authflow/internal/http/services/auth"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

// RefreshCookieName es la cookie del refresh opaco (path restringido a /api/auth).
const RefreshCookieName = "refresh_token"

// CookieConfig parametriza las cookies de sesión.
type CookieConfig struct {
	Name       string
	Secure     bool
	Domain     string
	TrustProxy bool
}

// Controllers agrupa los controllers de auth.
type Controllers struct {
	Session *SessionController
}

func NewControllers(s svc.Services, cookies CookieConfig) *Controllers {
	if cookies.Name == "" {
		cookies.Name = "token"
	}
	return &Controllers{Session: &SessionController{service: s.Session, cookies: cookies}}
}

// SessionController maneja login, refresh, logout y me.
type SessionController struct {
	service svc.SessionService
	cookies CookieConfig
}

// Login maneja POST /api/auth/login.
func (c *SessionController) Login(w http.ResponseWriter, r *http.Request) {
	var in dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := helpers.ValidateStruct(&in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out, err := c.service.Login(r.Context(), in, svc.ClientInfo{
		IP:        helpers.ClientIP(r, c.cookies.TrustProxy),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		httperrors.WriteError(w, c.mapError(r, err))
		return
	}

	c.setCookie(w, c.cookies.Name, out.Token, "/", out.ExpiresAt)
	c.setCookie(w, RefreshCookieName, out.RefreshToken, "/api/auth", out.RefreshExp)
	helpers.WriteNoStoreJSON(w, http.StatusOK, out)
}

// Refresh maneja POST /api/auth/refresh. El refresh llega en el body o en cookie.
func (c *SessionController) Refresh(w http.ResponseWriter, r *http.Request) {
	var in dto.RefreshRequest
	if err := readOptionalJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	raw := c.refreshFrom(r, in.RefreshToken)

	out, err := c.service.Refresh(r.Context(), raw)
	if err != nil {
		httperrors.WriteError(w, c.mapError(r, err))
		return
	}
	c.setCookie(w, c.cookies.Name, out.Token, "/", out.ExpiresAt)
	helpers.WriteNoStoreJSON(w, http.StatusOK, out)
}

// Logout maneja POST /api/auth/logout. Siempre limpia las cookies.
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	var in dto.LogoutRequest
	if err := readOptionalJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := c.service.Logout(r.Context(), c.refreshFrom(r, in.RefreshToken)); err != nil {
		httperrors.WriteError(w, c.mapError(r, err))
		return
	}
	c.clearCookie(w, c.cookies.Name, "/")
	c.clearCookie(w, RefreshCookieName, "/api/auth")
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

// Me maneja GET /api/auth/me (detrás de RequireSession).
func (c *SessionController) Me(w http.ResponseWriter, r *http.Request) {
	p := mw.GetPrincipal(r.Context())
	if p == nil || p.User == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{User: dto.UserFromStore(p.User)})
}

func (c *SessionController) refreshFrom(r *http.Request, fromBody string) string {
	if v := strings.TrimSpace(fromBody); v != "" {
		return v
	}
	if ck, err := r.Cookie(RefreshCookieName); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

func (c *SessionController) setCookie(w http.ResponseWriter, name, value, path string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   c.cookies.Domain,
		Expires:  exp,
		HttpOnly: true,
		Secure:   c.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *SessionController) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   c.cookies.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *SessionController) mapError(r *http.Request, err error) error {
	switch {
	case errors.Is(err, svc.ErrInvalidCredentials):
		return httperrors.ErrInvalidCredentials
	case errors.Is(err, svc.ErrInvalidRefresh):
		return httperrors.ErrInvalidSession.WithDetail("invalid refresh token")
	default:
		logger.From(r.Context()).Error("auth operation failed", logger.Layer("controller"), logger.Err(err))
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

// readOptionalJSON acepta body vacío (refresh por cookie).
func readOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.ContentLength == 0 || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return nil
	}
	return helpers.ReadJSON(w, r, v)
}
