// Package health contiene DTOs para endpoints de health check.
package health

import "time"

// Estados de componente y globales.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusDisabled    = "disabled"
	StatusReady       = "ready"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// ComponentStatus es el estado de un componente.
type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse es la respuesta de /readyz.
type HealthResponse struct {
	Status      string                     `json:"status"`
	Components  map[string]ComponentStatus `json:"components"`
	Version     string                     `json:"version,omitempty"`
	ActiveKeyID string                     `json:"active_key_id,omitempty"`
	Timestamp   time.Time                  `json:"timestamp"`
}

// LiveResponse es la respuesta de /healthz.
type LiveResponse struct {
	Status string `json:"status"`
}
