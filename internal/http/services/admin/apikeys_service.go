package admin

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dropDatabas3/authflow/internal/audit"
	dto "github.com/dropDatabas3/authflow/internal/http/dto/admin"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
)

// APIKeyService define las operaciones de API keys del admin API.
type APIKeyService interface {
	List(ctx context.Context, actor Actor) ([]dto.APIKeyResponse, error)
	Create(ctx context.Context, actor Actor, in dto.CreateAPIKeyRequest) (*dto.APIKeyCreated, error)
	Revoke(ctx context.Context, actor Actor, id string) error
	Delete(ctx context.Context, actor Actor, id string) error
}

type apiKeyService struct {
	store store.APIKeyRepository
	now   func() time.Time
}

func (s *apiKeyService) List(ctx context.Context, actor Actor) ([]dto.APIKeyResponse, error) {
	if actor.TenantID == "" {
		return nil, ErrTenantRequired
	}
	keys, err := s.store.ListAPIKeys(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	out := make([]dto.APIKeyResponse, 0, len(keys))
	for i := range keys {
		out = append(out, dto.APIKeyFromStore(&keys[i]))
	}
	return out, nil
}

func (s *apiKeyService) Create(ctx context.Context, actor Actor, in dto.CreateAPIKeyRequest) (*dto.APIKeyCreated, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.api_keys"),
		logger.Op("Create"),
		logger.TenantID(actor.TenantID),
	)
	if actor.TenantID == "" {
		return nil, ErrTenantRequired
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: expiresAt must be in the future", ErrInvalidInput)
	}
	if !canDelegate(actor, in.Permissions) {
		return nil, ErrEscalation
	}

	key, hash, prefix, err := tokens.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}
	perms := in.Permissions
	if perms == nil {
		perms = []string{}
	}
	k := &store.APIKey{
		TenantID:    actor.TenantID,
		Name:        in.Name,
		KeyHash:     hash,
		KeyPrefix:   prefix,
		Permissions: perms,
		IsActive:    true,
		ExpiresAt:   in.ExpiresAt,
		CreatedBy:   actor.UserID,
	}
	if err := s.store.CreateAPIKey(ctx, k); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}

	log.Info("api key created", logger.APIKeyID(k.ID))
	audit.Log(ctx, audit.Entry{
		Event: audit.APIKeyCreated, TenantID: actor.TenantID, ActorID: actor.UserID, ActorMethod: actor.Method,
		ResourceType: "api_key", ResourceID: k.ID,
		Meta: map[string]any{"name": k.Name, "key_prefix": k.KeyPrefix},
	})
	return &dto.APIKeyCreated{APIKeyResponse: dto.APIKeyFromStore(k), Key: key}, nil
}

func (s *apiKeyService) Revoke(ctx context.Context, actor Actor, id string) error {
	if actor.TenantID == "" {
		return ErrTenantRequired
	}
	if err := s.store.RevokeAPIKey(ctx, id, actor.TenantID); err != nil {
		if store.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("revoke api key: %w", err)
	}
	audit.Log(ctx, audit.Entry{
		Event: audit.APIKeyRevoked, TenantID: actor.TenantID, ActorID: actor.UserID, ActorMethod: actor.Method,
		ResourceType: "api_key", ResourceID: id,
	})
	return nil
}

func (s *apiKeyService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.TenantID == "" {
		return ErrTenantRequired
	}
	if err := s.store.DeleteAPIKey(ctx, id, actor.TenantID); err != nil {
		if store.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete api key: %w", err)
	}
	audit.Log(ctx, audit.Entry{
		Event: audit.APIKeyDeleted, TenantID: actor.TenantID, ActorID: actor.UserID, ActorMethod: actor.Method,
		ResourceType: "api_key", ResourceID: id,
	})
	return nil
}

// canDelegate: una API key sólo puede crear keys con permisos que ya tiene.
// Las sesiones de admin no tienen esa restricción.
func canDelegate(actor Actor, requested []string) bool {
	if actor.Method != "api_key" || slices.Contains(actor.Permissions, store.WildcardPermission) {
		return true
	}
	for _, p := range requested {
		if !slices.Contains(actor.Permissions, p) {
			return false
		}
	}
	return true
}
