package oauth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/http/helpers"
	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
	svc "github.com/dropDatabas3/authflow/internal/http/services/oauth"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

// ConsentController maneja la pantalla de consentimiento (fetch + decisión).
type ConsentController struct {
	service svc.ConsentService
}

func NewConsentController(s svc.ConsentService) *ConsentController {
	return &ConsentController{service: s}
}

// GetRequest maneja GET /api/oauth2/auth-request/{request_id}.
func (c *ConsentController) GetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.GetPrincipal(ctx)
	if p == nil || p.User == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	resp, err := c.service.GetRequest(ctx, p.UserID(), chi.URLParam(r, "request_id"))
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrRequestNotFound):
			httperrors.WriteError(w, httperrors.ErrAuthRequestAbsent)
		case errors.Is(err, svc.ErrNotRequestOwner):
			httperrors.WriteError(w, httperrors.ErrNotRequestOwner)
		case errors.Is(err, svc.ErrClientRemoved):
			httperrors.WriteError(w, httperrors.ErrNotFound.WithMessage("Client not found"))
		default:
			logger.From(ctx).Error("get auth request failed", logger.Layer("controller"), logger.Op("oauth.auth_request"), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}
	helpers.WriteNoStoreJSON(w, http.StatusOK, resp)
}

// Decide maneja POST /api/oauth2/consent.
func (c *ConsentController) Decide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.GetPrincipal(ctx)
	if p == nil || p.User == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.ConsentRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := helpers.ValidateStruct(&req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	resp, err := c.service.Decide(ctx, p.UserID(), req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrRequestNotFound):
			writeError(w, protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "Authorization request not found or expired"))
		case errors.Is(err, svc.ErrNotRequestOwner):
			httperrors.WriteError(w, httperrors.ErrNotRequestOwner)
		case errors.Is(err, svc.ErrClientNotFound):
			httperrors.WriteError(w, httperrors.ErrInvalidClient)
		case errors.Is(err, svc.ErrRedirectRevoked):
			httperrors.WriteError(w, httperrors.ErrInvalidRedirect)
		default:
			logger.From(ctx).Error("consent failed", logger.Layer("controller"), logger.Op("oauth.consent"), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}
	helpers.WriteNoStoreJSON(w, http.StatusOK, resp)
}
