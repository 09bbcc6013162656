package oauth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/http/helpers"
	svc "github.com/dropDatabas3/authflow/internal/http/services/oauth"
	"github.com/dropDatabas3/authflow/internal/metrics"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

const maxTokenForm = 64 << 10

var errInvalidCode = protocol(http.StatusBadRequest, httperrors.CodeInvalidGrant, "Invalid or expired authorization code")

// TokenController maneja POST /oauth2/token.
type TokenController struct {
	service svc.TokenService
	metrics *metrics.Metrics
}

// NewTokenController crea el controller. m puede ser nil.
func NewTokenController(s svc.TokenService, m *metrics.Metrics) *TokenController {
	return &TokenController{service: s, metrics: m}
}

func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.token"))

	_, _, basic := r.BasicAuth()

	r.Body = http.MaxBytesReader(w, r.Body, maxTokenForm)
	if err := r.ParseForm(); err != nil {
		c.fail(w, protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "Invalid form data"), basic)
		return
	}

	req, err := dto.ParseTokenRequest(r)
	if err != nil {
		var pe *httperrors.ProtocolError
		if errors.As(err, &pe) {
			c.fail(w, pe, basic)
			return
		}
		c.fail(w, errServer, basic)
		return
	}
	log = log.With(logger.GrantType(req.GrantType()), logger.ClientID(req.Credentials().ClientID))

	resp, err := c.service.Exchange(ctx, req)
	if err != nil {
		pe := tokenError(req, err)
		if pe.Code == httperrors.CodeServerError {
			log.Error("token issuance failed", logger.Err(err))
		} else {
			log.Info("token request rejected", logger.String("error", pe.Code))
		}
		c.fail(w, pe, req.Credentials().Basic)
		return
	}

	c.metrics.TokenIssued(req.GrantType())
	helpers.WriteNoStoreJSON(w, http.StatusOK, resp)
}

// fail escribe el error. invalid_client es 400 salvo que el cliente se haya
// autenticado por Basic: ahí 401 con WWW-Authenticate (RFC 6749 §5.2).
func (c *TokenController) fail(w http.ResponseWriter, pe *httperrors.ProtocolError, basic bool) {
	c.metrics.TokenError(pe.Code)
	if pe.Code == httperrors.CodeInvalidClient {
		status := http.StatusBadRequest
		if basic {
			status = http.StatusUnauthorized
			w.Header().Set("WWW-Authenticate", `Basic realm="oauth2"`)
		}
		pe = protocol(status, pe.Code, pe.Description)
	}
	writeError(w, pe)
}

func tokenError(req dto.TokenRequest, err error) *httperrors.ProtocolError {
	switch {
	case errors.Is(err, svc.ErrClientAuth):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidClient, "Client authentication failed")
	case errors.Is(err, svc.ErrUnauthorizedClient):
		return protocol(http.StatusBadRequest, httperrors.CodeUnauthorizedClient, "Client not authorized for this grant type")
	case errors.Is(err, svc.ErrInvalidGrant):
		if req.GrantType() == dto.GrantRefreshToken {
			return protocol(http.StatusBadRequest, httperrors.CodeInvalidGrant, "Invalid refresh token")
		}
		return errInvalidCode
	case errors.Is(err, svc.ErrRedirectURIMismatch):
		// Misma descripción que un code desconocido o vencido.
		return errInvalidCode
	case errors.Is(err, svc.ErrVerifierRequired):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "code_verifier required")
	case errors.Is(err, svc.ErrPKCEFailed):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidGrant, "PKCE validation failed")
	case errors.Is(err, svc.ErrInvalidScope):
		return protocol(http.StatusBadRequest, httperrors.CodeInvalidScope, "Requested scope exceeds the original grant")
	default:
		return protocol(http.StatusInternalServerError, httperrors.CodeServerError, "Token issuance failed")
	}
}
