// Package admin contiene controllers para endpoints administrativos.
package admin

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
	mw "github.com/dropDatabas3/authflow/internal/http/middlewares"
	svc "github.com/dropDatabas3/authflow/internal/http/services/admin"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

// Controllers agrupa los controllers admin.
type Controllers struct {
	Clients *ClientsController
	APIKeys *APIKeysController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Clients: &ClientsController{service: s.Clients},
		APIKeys: &APIKeysController{service: s.APIKeys},
	}
}

// actorFrom arma el Actor desde el principal del request.
func actorFrom(r *http.Request) (svc.Actor, bool) {
	p := mw.GetPrincipal(r.Context())
	if p == nil {
		return svc.Actor{}, false
	}
	a := svc.Actor{TenantID: p.TenantID(), UserID: p.UserID(), Method: p.Method}
	if p.APIKey != nil {
		a.Permissions = p.APIKey.Permissions
	}
	return a, true
}

func mapError(r *http.Request, err error) error {
	switch {
	case errors.Is(err, svc.ErrTenantRequired):
		return httperrors.ErrTenantRequired
	case errors.Is(err, svc.ErrNotFound):
		return httperrors.ErrNotFound
	case errors.Is(err, svc.ErrInvalidInput):
		return httperrors.ErrValidation.WithDetail(err.Error())
	case errors.Is(err, svc.ErrEscalation):
		return httperrors.ErrForbidden.WithDetail("requested permissions exceed the API key's own")
	default:
		logger.From(r.Context()).Error("admin operation failed", logger.Layer("controller"), logger.Err(err))
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
