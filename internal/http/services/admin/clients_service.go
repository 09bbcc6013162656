package admin

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authflow/internal/audit"
	dto "github.com/dropDatabas3/authflow/internal/http/dto/admin"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/dropDatabas3/authflow/internal/validation"
)

// ClientService define las operaciones de clients OAuth2 del admin API.
type ClientService interface {
	List(ctx context.Context, actor Actor) ([]dto.ClientResponse, error)
	Create(ctx context.Context, actor Actor, in dto.CreateClientRequest) (*dto.ClientWithSecret, error)
	Delete(ctx context.Context, actor Actor, id string) error
	RotateSecret(ctx context.Context, actor Actor, id string) (*dto.ClientWithSecret, error)
}

type clientService struct {
	store store.ClientRepository
}

var (
	defaultGrantTypes = []string{"authorization_code", "refresh_token"}
	defaultScopes     = []string{"openid", "profile", "email"}
)

func (s *clientService) List(ctx context.Context, actor Actor) ([]dto.ClientResponse, error) {
	if actor.TenantID == "" {
		return nil, ErrTenantRequired
	}
	clients, err := s.store.ListClients(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	out := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, dto.ClientFromStore(&clients[i]))
	}
	return out, nil
}

func (s *clientService) Create(ctx context.Context, actor Actor, in dto.CreateClientRequest) (*dto.ClientWithSecret, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.clients"),
		logger.Op("Create"),
		logger.TenantID(actor.TenantID),
	)
	if actor.TenantID == "" {
		return nil, ErrTenantRequired
	}
	if len(in.RedirectURIs) == 0 {
		return nil, fmt.Errorf("%w: at least one redirect uri is required", ErrInvalidInput)
	}
	if v, bad := validation.FirstInvalid(in.RedirectURIs, validation.ValidRedirectURI); bad {
		return nil, fmt.Errorf("%w: invalid redirect uri %q", ErrInvalidInput, v)
	}
	if v, bad := validation.FirstInvalid(in.Scopes, validation.ValidScopeName); bad {
		return nil, fmt.Errorf("%w: invalid scope %q", ErrInvalidInput, v)
	}

	clientID, err := tokens.GenerateOpaqueHex(16)
	if err != nil {
		return nil, fmt.Errorf("generate client_id: %w", err)
	}
	secret, err := tokens.GenerateOpaqueHex(32)
	if err != nil {
		return nil, fmt.Errorf("generate client secret: %w", err)
	}

	c := &store.Client{
		TenantID:         actor.TenantID,
		ClientID:         clientID,
		ClientSecretHash: tokens.HashSecret(secret),
		Name:             in.Name,
		Description:      in.Description,
		RedirectURIs:     in.RedirectURIs,
		GrantTypes:       orDefault(in.GrantTypes, defaultGrantTypes),
		ResponseTypes:    []string{"code"},
		Scopes:           orDefault(in.Scopes, defaultScopes),
		IsActive:         true,
		CreatedBy:        actor.UserID,
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	log.Info("client created", logger.ClientID(c.ClientID))
	audit.Log(ctx, audit.Entry{
		Event: audit.ClientCreated, TenantID: actor.TenantID, ActorID: actor.UserID, ActorMethod: actor.Method,
		ResourceType: "oauth2_client", ResourceID: c.ID,
		Meta: map[string]any{"client_id": c.ClientID, "name": c.Name},
	})
	return &dto.ClientWithSecret{ClientResponse: dto.ClientFromStore(c), ClientSecret: secret}, nil
}

func (s *clientService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.TenantID == "" {
		return ErrTenantRequired
	}
	if err := s.store.DeleteClient(ctx, id, actor.TenantID); err != nil {
		if store.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete client: %w", err)
	}
	audit.Log(ctx, audit.Entry{
		Event: audit.ClientDeleted, TenantID: actor.TenantID, ActorID: actor.UserID, ActorMethod: actor.Method,
		ResourceType: "oauth2_client", ResourceID: id,
	})
	return nil
}

// RotateSecret reemplaza el hash; el secret anterior deja de autenticar en el acto.
func (s *clientService) RotateSecret(ctx context.Context, actor Actor, id string) (*dto.ClientWithSecret, error) {
	if actor.TenantID == "" {
		return nil, ErrTenantRequired
	}
	secret, err := tokens.GenerateOpaqueHex(32)
	if err != nil {
		return nil, fmt.Errorf("generate client secret: %w", err)
	}
	if err := s.store.UpdateClientSecret(ctx, id, actor.TenantID, tokens.HashSecret(secret)); err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rotate secret: %w", err)
	}
	c, err := s.store.GetClientByID(ctx, id, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("reload client: %w", err)
	}

	audit.Log(ctx, audit.Entry{
		Event: audit.ClientSecretRotated, TenantID: actor.TenantID, ActorID: actor.UserID, ActorMethod: actor.Method,
		ResourceType: "oauth2_client", ResourceID: id,
		Meta: map[string]any{"client_id": c.ClientID},
	})
	return &dto.ClientWithSecret{ClientResponse: dto.ClientFromStore(c), ClientSecret: secret}, nil
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return append([]string(nil), def...)
	}
	return v
}
