package oauth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/oauth"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
)

// ConsentService resuelve el request pendiente: lo muestra y lo decide.
type ConsentService interface {
	GetRequest(ctx context.Context, userID, requestID string) (*dto.AuthRequestResponse, error)
	Decide(ctx context.Context, userID string, req dto.ConsentRequest) (*dto.ConsentResponse, error)
}

// ConsentDeps contiene las dependencias del consentimiento.
type ConsentDeps struct {
	Clients  store.ClientRepository
	Codes    store.CodeRepository
	Requests *RequestStore
	CodeTTL  time.Duration
	Now      func() time.Time
}

type consentService struct {
	deps ConsentDeps
}

// NewConsentService crea el ConsentService.
func NewConsentService(d ConsentDeps) ConsentService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.CodeTTL <= 0 {
		d.CodeTTL = 10 * time.Minute
	}
	return &consentService{deps: d}
}

func (s *consentService) GetRequest(ctx context.Context, userID, requestID string) (*dto.AuthRequestResponse, error) {
	st, err := s.deps.Requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if st.UserID != userID {
		return nil, ErrNotRequestOwner
	}

	client, err := s.deps.Clients.GetClientByClientID(ctx, st.ClientID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrClientRemoved
		}
		return nil, fmt.Errorf("get client: %w", err)
	}

	return &dto.AuthRequestResponse{
		ClientID:          st.ClientID,
		ClientName:        client.Name,
		ClientDescription: client.Description,
		Scope:             st.Scope,
		RedirectURI:       st.RedirectURI,
	}, nil
}

func (s *consentService) Decide(ctx context.Context, userID string, req dto.ConsentRequest) (*dto.ConsentResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ConsentService.Decide"))

	// El dueño se verifica antes de consumir: un tercero no puede descartar
	// el request de otro usuario.
	st, err := s.deps.Requests.Get(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if st.UserID != userID {
		return nil, ErrNotRequestOwner
	}
	st, err = s.deps.Requests.Consume(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	client, err := s.deps.Clients.GetClientByClientID(ctx, st.ClientID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	if !client.IsActive || client.TenantID != st.TenantID {
		return nil, ErrClientNotFound
	}
	if !client.HasRedirectURI(st.RedirectURI) {
		return nil, ErrRedirectRevoked
	}

	target, err := url.Parse(st.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("parse redirect_uri: %w", err)
	}
	q := target.Query()

	if !req.Approved {
		q.Set("error", "access_denied")
		q.Set("error_description", "User denied authorization")
		if st.State != "" {
			q.Set("state", st.State)
		}
		target.RawQuery = q.Encode()
		log.Info("authorization denied", logger.ClientID(st.ClientID), logger.UserID(userID))
		return &dto.ConsentResponse{RedirectURL: target.String()}, nil
	}

	code, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	ac := &store.AuthorizationCode{
		CodeHash:            tokens.HashSecret(code),
		ClientID:            st.ClientID,
		UserID:              st.UserID,
		TenantID:            st.TenantID,
		RedirectURI:         st.RedirectURI,
		Scopes:              splitScope(st.Scope),
		CodeChallenge:       st.CodeChallenge,
		CodeChallengeMethod: st.CodeChallengeMethod,
		ExpiresAt:           s.deps.Now().UTC().Add(s.deps.CodeTTL),
	}
	if err := s.deps.Codes.CreateCode(ctx, ac); err != nil {
		return nil, fmt.Errorf("create code: %w", err)
	}

	q.Set("code", code)
	if st.State != "" {
		q.Set("state", st.State)
	}
	target.RawQuery = q.Encode()

	log.Info("authorization code issued", logger.ClientID(st.ClientID), logger.UserID(userID))
	return &dto.ConsentResponse{RedirectURL: target.String()}, nil
}
