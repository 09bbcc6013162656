package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/oauth"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	"github.com/dropDatabas3/authflow/internal/security/pkce"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
)

// TokenService implementa POST /oauth2/token.
type TokenService interface {
	Exchange(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
}

// TokenStore es el subconjunto del store que usa el token endpoint.
type TokenStore interface {
	store.ClientRepository
	store.CodeRepository
	store.AccessTokenRepository
	store.RefreshTokenRepository
}

// TokenDeps contiene las dependencias del token endpoint.
type TokenDeps struct {
	Store        TokenStore
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	Rotate       bool
	StoreTimeout time.Duration
	Now          func() time.Time
}

type tokenService struct {
	deps TokenDeps
}

// NewTokenService crea el TokenService. TTLs en cero toman los defaults (1h / 30d).
func NewTokenService(d TokenDeps) TokenService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.AccessTTL <= 0 {
		d.AccessTTL = time.Hour
	}
	if d.RefreshTTL <= 0 {
		d.RefreshTTL = 30 * 24 * time.Hour
	}
	return &tokenService{deps: d}
}

func (s *tokenService) Exchange(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	if s.deps.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.StoreTimeout)
		defer cancel()
	}

	switch g := req.(type) {
	case dto.AuthorizationCodeGrant:
		return s.exchangeCode(ctx, g)
	case dto.RefreshTokenGrant:
		return s.exchangeRefresh(ctx, g)
	default:
		return nil, fmt.Errorf("unexpected grant %T", req)
	}
}

// authenticateClient verifica el secret en tiempo constante. allowPublic
// permite omitir el secret; el llamador decide después si el grant lo admite.
func (s *tokenService) authenticateClient(ctx context.Context, creds dto.ClientCredentials, allowPublic bool) (*store.Client, bool, error) {
	client, err := s.deps.Store.GetClientByClientID(ctx, creds.ClientID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, false, ErrClientAuth
		}
		return nil, false, fmt.Errorf("get client: %w", err)
	}
	if !client.IsActive {
		return nil, false, ErrClientAuth
	}
	if creds.ClientSecret == "" {
		if !allowPublic {
			return nil, false, ErrClientAuth
		}
		return client, true, nil
	}
	if !tokens.VerifySecret(creds.ClientSecret, client.ClientSecretHash) {
		return nil, false, ErrClientAuth
	}
	return client, false, nil
}

func (s *tokenService) exchangeCode(ctx context.Context, g dto.AuthorizationCodeGrant) (*dto.TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.ExchangeCode"),
		logger.ClientID(g.Client.ClientID))

	client, public, err := s.authenticateClient(ctx, g.Client, true)
	if err != nil {
		return nil, err
	}
	if !client.AllowsGrant(dto.GrantAuthorizationCode) {
		return nil, ErrUnauthorizedClient
	}

	// Consumido antes de cualquier otra verificación: un intento fallido
	// también quema el code.
	code, err := s.deps.Store.ConsumeCode(ctx, tokens.HashSecret(g.Code))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidGrant
		}
		return nil, fmt.Errorf("consume code: %w", err)
	}

	if public && code.CodeChallenge == "" {
		return nil, ErrClientAuth
	}
	if code.ClientID != client.ClientID || code.TenantID != client.TenantID {
		log.Warn("code presented by another client")
		return nil, ErrInvalidGrant
	}
	if code.RedirectURI != g.RedirectURI {
		return nil, ErrRedirectURIMismatch
	}
	if code.CodeChallenge != "" {
		if g.CodeVerifier == "" {
			return nil, ErrVerifierRequired
		}
		if !pkce.Verify(code.CodeChallengeMethod, code.CodeChallenge, g.CodeVerifier) {
			return nil, ErrPKCEFailed
		}
	}

	resp, err := s.mint(ctx, client, code.UserID, code.TenantID, code.Scopes, true)
	if err != nil {
		return nil, err
	}
	log.Info("tokens issued", logger.GrantType(dto.GrantAuthorizationCode), logger.UserID(code.UserID))
	return resp, nil
}

func (s *tokenService) exchangeRefresh(ctx context.Context, g dto.RefreshTokenGrant) (*dto.TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.ExchangeRefresh"),
		logger.ClientID(g.Client.ClientID))

	client, _, err := s.authenticateClient(ctx, g.Client, false)
	if err != nil {
		return nil, err
	}
	if !client.AllowsGrant(dto.GrantRefreshToken) {
		return nil, ErrUnauthorizedClient
	}

	hash := tokens.HashSecret(g.RefreshToken)
	var rt *store.RefreshToken
	if s.deps.Rotate {
		rt, err = s.deps.Store.ConsumeRefreshToken(ctx, hash)
	} else {
		rt, err = s.deps.Store.GetRefreshTokenByHash(ctx, hash)
	}
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidGrant
		}
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if rt.ClientID != client.ClientID || rt.TenantID != client.TenantID {
		log.Warn("refresh token presented by another client")
		return nil, ErrInvalidGrant
	}

	scopes := rt.Scopes
	if g.Scope != "" {
		requested := splitScope(g.Scope)
		if !scopeSubset(requested, rt.Scopes) {
			return nil, ErrInvalidScope
		}
		scopes = requested
	}

	resp, err := s.mint(ctx, client, rt.UserID, rt.TenantID, scopes, s.deps.Rotate)
	if err != nil {
		return nil, err
	}
	log.Info("tokens refreshed", logger.GrantType(dto.GrantRefreshToken), logger.UserID(rt.UserID),
		logger.Bool("rotated", s.deps.Rotate))
	return resp, nil
}

// mint emite access (y opcionalmente refresh). Sólo se persisten los hashes.
func (s *tokenService) mint(ctx context.Context, client *store.Client, userID, tenantID string, scopes []string, withRefresh bool) (*dto.TokenResponse, error) {
	now := s.deps.Now().UTC()

	access, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	at := &store.AccessToken{
		TokenHash: tokens.HashSecret(access),
		ClientID:  client.ClientID,
		UserID:    userID,
		TenantID:  tenantID,
		Scopes:    scopes,
		ExpiresAt: now.Add(s.deps.AccessTTL),
	}
	if err := s.deps.Store.CreateAccessToken(ctx, at); err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	resp := &dto.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.deps.AccessTTL / time.Second),
		Scope:       strings.Join(scopes, " "),
	}
	if !withRefresh {
		return resp, nil
	}

	refresh, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	rt := &store.RefreshToken{
		TokenHash:     tokens.HashSecret(refresh),
		AccessTokenID: at.ID,
		ClientID:      client.ClientID,
		UserID:        userID,
		TenantID:      tenantID,
		Scopes:        scopes,
		ExpiresAt:     now.Add(s.deps.RefreshTTL),
	}
	if err := s.deps.Store.CreateRefreshToken(ctx, rt); err != nil {
		// El access ya emitido no se devuelve: se borra para no dejarlo huérfano.
		if delErr := s.deps.Store.DeleteAccessToken(context.WithoutCancel(ctx), at.ID); delErr != nil && !errors.Is(delErr, store.ErrNotFound) {
			logger.From(ctx).Warn("orphan access token cleanup failed", logger.Err(delErr))
		}
		return nil, fmt.Errorf("create refresh token: %w", err)
	}
	resp.RefreshToken = refresh
	return resp, nil
}
