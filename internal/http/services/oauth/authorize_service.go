package oauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/oauth"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	"github.com/dropDatabas3/authflow/internal/security/pkce"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
)

// AuthorizeService valida el authorize y deja el request pendiente de consentimiento.
type AuthorizeService interface {
	// Authorize devuelve la URL de la pantalla de consentimiento.
	Authorize(ctx context.Context, user *store.User, req dto.AuthorizeRequest) (string, error)
}

// AuthorizeDeps contiene las dependencias del authorize.
type AuthorizeDeps struct {
	Clients    store.ClientRepository
	Requests   *RequestStore
	ConsentURL string
	Now        func() time.Time
}

type authorizeService struct {
	deps AuthorizeDeps
}

// NewAuthorizeService crea el AuthorizeService.
func NewAuthorizeService(d AuthorizeDeps) AuthorizeService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ConsentURL == "" {
		d.ConsentURL = "/oauth2/consent"
	}
	return &authorizeService{deps: d}
}

func (s *authorizeService) Authorize(ctx context.Context, user *store.User, req dto.AuthorizeRequest) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("AuthorizeService.Authorize"))

	if req.ClientID == "" || req.RedirectURI == "" || req.ResponseType == "" {
		return "", ErrMissingParams
	}
	if req.ResponseType != "code" {
		return "", ErrUnsupportedResponseType
	}
	if req.CodeChallengeMethod != "" && (req.CodeChallenge == "" || !pkce.ValidMethod(req.CodeChallengeMethod)) {
		return "", ErrInvalidPKCEParams
	}

	client, err := s.deps.Clients.GetClientByClientID(ctx, req.ClientID)
	if err != nil {
		if store.IsNotFound(err) {
			return "", ErrClientNotFound
		}
		return "", fmt.Errorf("get client: %w", err)
	}
	if !client.IsActive {
		return "", ErrClientNotFound
	}
	if client.TenantID != user.TenantID {
		log.Warn("authorize for foreign client", logger.ClientID(client.ClientID), logger.TenantID(user.TenantID))
		return "", ErrClientTenant
	}
	if !client.HasRedirectURI(req.RedirectURI) {
		return "", ErrRedirectNotRegistered
	}
	if !client.AllowsGrant(dto.GrantAuthorizationCode) {
		return "", ErrUnauthorizedClient
	}

	scope := req.Scope
	if scope == "" {
		scope = dto.DefaultScope
	}
	scopes := splitScope(scope)
	if len(client.Scopes) > 0 && !scopeSubset(scopes, client.Scopes) {
		return "", ErrInvalidScope
	}

	id, err := tokens.GenerateOpaqueHex(32)
	if err != nil {
		return "", fmt.Errorf("generate request id: %w", err)
	}
	st := &AuthRequestState{
		ID:                  id,
		ClientID:            client.ClientID,
		RedirectURI:         req.RedirectURI,
		ResponseType:        req.ResponseType,
		Scope:               strings.Join(scopes, " "),
		State:               req.State,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		UserID:              user.ID,
		TenantID:            user.TenantID,
		CreatedAt:           s.deps.Now().UTC(),
	}
	if err := s.deps.Requests.Save(ctx, st); err != nil {
		return "", err
	}

	log.Debug("authorization request stored", logger.ClientID(client.ClientID), logger.UserID(user.ID))
	return consentLocation(s.deps.ConsentURL, id)
}

// consentLocation agrega request_id conservando el query existente de la URL.
func consentLocation(base, requestID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse consent url: %w", err)
	}
	q := u.Query()
	q.Set("request_id", requestID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
