// Package oidc contiene los controllers de discovery, JWKS y userinfo.
package oidc

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/http/helpers"
	svc "github.com/dropDatabas3/authflow/internal/http/services/oidc"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

// Controllers agrupa todos los controllers del dominio OIDC.
type Controllers struct {
	JWKS      *JWKSController
	Discovery *DiscoveryController
	UserInfo  *UserInfoController
}

// NewControllers crea el agregador de controllers OIDC.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		JWKS:      &JWKSController{service: s.JWKS},
		Discovery: &DiscoveryController{service: s.Discovery},
		UserInfo:  &UserInfoController{service: s.UserInfo},
	}
}

// ─── Discovery ───

type DiscoveryController struct {
	service svc.DiscoveryService
}

// Discovery maneja GET /.well-known/openid-configuration.
func (c *DiscoveryController) Discovery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	helpers.WriteJSON(w, http.StatusOK, c.service.Metadata(r.Context()))
}

// ─── JWKS ───

type JWKSController struct {
	service svc.JWKSService
}

// JWKS maneja GET /.well-known/jwks.json.
func (c *JWKSController) JWKS(w http.ResponseWriter, r *http.Request) {
	data, err := c.service.JWKS(r.Context())
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ─── UserInfo ───

type UserInfoController struct {
	service svc.UserInfoService
}

var errInvalidToken = httperrors.Protocol(http.StatusUnauthorized, httperrors.CodeInvalidToken, "")

// UserInfo maneja GET|POST /oauth2/userinfo.
func (c *UserInfoController) UserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tok, ok := bearer(r)
	if !ok {
		httperrors.WriteProtocolError(w, errInvalidToken)
		return
	}

	resp, err := c.service.UserInfo(ctx, tok)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidToken):
			httperrors.WriteProtocolError(w, errInvalidToken)
		case errors.Is(err, svc.ErrUserNotFound):
			httperrors.WriteProtocolError(w, httperrors.Protocol(http.StatusNotFound, "user_not_found", ""))
		default:
			logger.From(ctx).Error("userinfo failed", logger.Layer("controller"), logger.Op("oidc.userinfo"), logger.Err(err))
			httperrors.WriteProtocolError(w, httperrors.Protocol(http.StatusInternalServerError, httperrors.CodeServerError, ""))
		}
		return
	}
	helpers.WriteNoStoreJSON(w, http.StatusOK, resp)
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}
