// Package audit registra eventos administrativos a través del logger
// estructurado (component=audit). El sink real lo decide la config de zap.
package audit

import (
	"context"
	"time"

	"github.com/dropDatabas3/authflow/internal/observability/logger"
)

type Event string

const (
	APIKeyCreated       Event = "api_key.created"
	APIKeyRevoked       Event = "api_key.revoked"
	APIKeyDeleted       Event = "api_key.deleted"
	ClientCreated       Event = "oauth2_client.created"
	ClientDeleted       Event = "oauth2_client.deleted"
	ClientSecretRotated Event = "oauth2_client.secret_rotated"
)

// Entry es un evento de auditoría. Meta nunca lleva secretos.
type Entry struct {
	Event        Event
	TenantID     string
	ActorID      string
	ActorMethod  string
	ResourceType string
	ResourceID   string
	Meta         map[string]any
}

// Log escribe el evento con el logger del request (incluye request_id).
func Log(ctx context.Context, e Entry) {
	fields := []logger.Field{
		logger.Component("audit"),
		logger.String("event", string(e.Event)),
		logger.TenantID(e.TenantID),
		logger.UserID(e.ActorID),
		logger.String("resource_type", e.ResourceType),
		logger.String("resource_id", e.ResourceID),
		logger.String("ts", time.Now().UTC().Format(time.RFC3339Nano)),
	}
	if e.ActorMethod != "" {
		fields = append(fields, logger.AuthMethod(e.ActorMethod))
	}
	if len(e.Meta) > 0 {
		fields = append(fields, logger.Any("meta", e.Meta))
	}
	logger.From(ctx).Info("audit event", fields...)
}
