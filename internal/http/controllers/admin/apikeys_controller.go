package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/http/helpers"
	svc "github.com/dropDatabas3/authflow/internal/http/services/admin"
)

// APIKeysController maneja /api/admin/api-keys.
type APIKeysController struct {
	service svc.APIKeyService
}

func (c *APIKeysController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	out, err := c.service.List(r.Context(), actor)
	if err != nil {
		httperrors.WriteError(w, mapError(r, err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *APIKeysController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	var in dto.CreateAPIKeyRequest
	if err := helpers.ReadJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := helpers.ValidateStruct(&in); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	out, err := c.service.Create(r.Context(), actor, in)
	if err != nil {
		httperrors.WriteError(w, mapError(r, err))
		return
	}
	helpers.WriteNoStoreJSON(w, http.StatusCreated, out)
}

// Revoke maneja PUT /api/admin/api-keys/{id}/revoke.
func (c *APIKeysController) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	if err := c.service.Revoke(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, mapError(r, err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "API key revoked"})
}

func (c *APIKeysController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	if err := c.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, mapError(r, err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "API key deleted"})
}
