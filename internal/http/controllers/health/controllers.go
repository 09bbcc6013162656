// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/health"
	"github.com/dropDatabas3/authflow/internal/http/helpers"
	svc "github.com/dropDatabas3/authflow/internal/http/services/health"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

// Controllers agrupa todos los controllers del dominio health.
type Controllers struct {
	Health *HealthController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Health: &HealthController{service: s.Health}}
}

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	service svc.HealthService
}

// Healthz es liveness: responde mientras el proceso atienda.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.LiveResponse{Status: dto.StatusOK})
}

// Readyz maneja GET /readyz: 503 sólo si falla un componente crítico.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := c.service.Check(r.Context())

	if resp.Version != "" {
		w.Header().Set("X-Service-Version", resp.Version)
	}
	if resp.ActiveKeyID != "" {
		w.Header().Set("X-JWKS-KID", resp.ActiveKeyID)
	}
	status := http.StatusOK
	if resp.Status == dto.StatusUnavailable {
		status = http.StatusServiceUnavailable
	}

	logger.From(r.Context()).Debug("health check completed",
		logger.Layer("controller"), logger.String("status", resp.Status))
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, status, resp)
}
