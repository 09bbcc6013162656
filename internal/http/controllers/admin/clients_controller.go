package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	"github.com/dropDatabas3/authflow/internal/http/helpers"
	svc "github.com/dropDatabas3/authflow/internal/http/services/admin"
)

// ClientsController maneja /api/admin/oauth2/clients.
type ClientsController struct {
	service svc.ClientService
}

// List maneja GET /api/admin/oauth2/clients.
func (c *ClientsController) List(w http.ResponseWriter, r *http.Request) {
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

// Create maneja POST /api/admin/oauth2/clients.
func (c *ClientsController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	var in dto.CreateClientRequest
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

// Delete maneja DELETE /api/admin/oauth2/clients/{id}.
func (c *ClientsController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	if err := c.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httperrors.WriteError(w, mapError(r, err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "OAuth2 client deleted"})
}

// RotateSecret maneja POST /api/admin/oauth2/clients/{id}/rotate-secret.
func (c *ClientsController) RotateSecret(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	out, err := c.service.RotateSecret(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteError(w, mapError(r, err))
		return
	}
	helpers.WriteNoStoreJSON(w, http.StatusOK, out)
}
