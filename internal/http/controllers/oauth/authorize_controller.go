// Package oauth contiene los controllers de los endpoints OAuth2.
package oauth

import (
	"errors"
	"net/http"
	"net/url"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
	svc "github.com/dropDatabas3/authflow/internal/http/services/oauth"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

// AuthorizeController maneja GET /oauth2/authorize.
type AuthorizeController struct {
	service  svc.AuthorizeService
	loginURL string
}

// NewAuthorizeController crea el controller. loginURL recibe ?return_to=.
func NewAuthorizeController(s svc.AuthorizeService, loginURL string) *AuthorizeController {
	if loginURL == "" {
		loginURL = "/login"
	}
	return &AuthorizeController{service: s, loginURL: loginURL}
}

func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.authorize"))

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Add("Vary", "Cookie")

	p := mw.GetPrincipal(ctx)
	if p == nil || p.Method != mw.MethodSession || p.User == nil {
		c.redirectToLogin(w, r)
		return
	}

	loc, err := c.service.Authorize(ctx, p.User, dto.AuthorizeRequestFromQuery(r.URL.Query()))
	if err != nil {
		// Nunca se redirige al cliente acá: el redirect_uri puede no estar validado.
		pe := authorizeError(err)
		if pe.Status >= http.StatusInternalServerError {
			log.Error("authorize failed", logger.Err(err))
		}
		writeError(w, pe)
		return
	}
	http.Redirect(w, r, loc, http.StatusFound)
}

func (c *AuthorizeController) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	u, err := url.Parse(c.loginURL)
	if err != nil {
		writeError(w, errServer)
		return
	}
	q := u.Query()
	q.Set("return_to", r.URL.RequestURI())
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

func authorizeError(err error) *httperrors.ProtocolError {
	switch {
	case errors.Is(err, svc.ErrMissingParams):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "Missing required parameters")
	case errors.Is(err, svc.ErrUnsupportedResponseType):
		return protocol(http.StatusBadRequest, httperrors.CodeUnsupportedRespType, "Only response_type=code is supported")
	case errors.Is(err, svc.ErrInvalidPKCEParams):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "Invalid code_challenge or code_challenge_method")
	case errors.Is(err, svc.ErrClientNotFound):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidClient, "Client not found")
	case errors.Is(err, svc.ErrClientTenant):
		return protocol(http.StatusForbidden, httperrors.CodeForbidden, "Client belongs to different tenant")
	case errors.Is(err, svc.ErrRedirectNotRegistered):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "Invalid redirect_uri")
	case errors.Is(err, svc.ErrUnauthorizedClient):
		return protocol(http.StatusBadRequest, httperrors.CodeUnauthorizedClient, "Client not authorized for this grant type")
	case errors.Is(err, svc.ErrInvalidScope):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidScope, "Requested scope is not allowed for this client")
	default:
		return protocol(http.StatusInternalServerError, httperrors.CodeServerError, "Authorization failed")
	}
}
