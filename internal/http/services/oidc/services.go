// Package oidc contiene los services para endpoints OIDC/Discovery.
package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/oidc"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
)

var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrUserNotFound = errors.New("user not found")
)

// ─── Discovery ───

// DiscoveryService arma el documento de openid-configuration.
type DiscoveryService interface {
	Metadata(ctx context.Context) *dto.Metadata
}

type discoveryService struct {
	issuer string
}

// NewDiscoveryService: issuer sin "/" final.
func NewDiscoveryService(issuer string) DiscoveryService {
	return &discoveryService{issuer: strings.TrimRight(issuer, "/")}
}

func (s *discoveryService) Metadata(context.Context) *dto.Metadata {
	base := s.issuer
	return &dto.Metadata{
		Issuer:                            base,
		AuthorizationEndpoint:             base + "/oauth2/authorize",
		TokenEndpoint:                     base + "/oauth2/token",
		UserinfoEndpoint:                  base + "/oauth2/userinfo",
		JWKSURI:                           base + "/.well-known/jwks.json",
		ResponseTypesSupported:            []string{"code"},
		SubjectTypesSupported:             []string{"public"},
		IDTokenSigningAlgValuesSupported:  []string{"RS256"},
		ScopesSupported:                   []string{"openid", "profile", "email"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_post", "client_secret_basic"},
		ClaimsSupported:                   []string{"sub", "name", "given_name", "family_name", "email", "email_verified"},
		CodeChallengeMethodsSupported:     []string{"S256", "plain"},
		GrantTypesSupported:               []string{"authorization_code", "refresh_token"},
	}
}

// ─── JWKS ───

// JWKSService expone la llave pública de firma.
type JWKSService interface {
	JWKS(ctx context.Context) (json.RawMessage, error)
}

type jwksService struct {
	jwks *jwtx.JWKS
}

func NewJWKSService(j *jwtx.JWKS) JWKSService {
	return &jwksService{jwks: j}
}

func (s *jwksService) JWKS(ctx context.Context) (json.RawMessage, error) {
	data, err := s.jwks.JSON()
	if err != nil {
		logger.From(ctx).Error("jwks export failed", logger.Layer("service"), logger.Op("JWKSService.JWKS"), logger.Err(err))
		return nil, fmt.Errorf("export jwks: %w", err)
	}
	return data, nil
}

// ─── UserInfo ───

// UserInfoService resuelve los claims del dueño de un access token.
type UserInfoService interface {
	UserInfo(ctx context.Context, accessToken string) (*dto.UserInfoResponse, error)
}

// UserInfoDeps contiene las dependencias de userinfo.
type UserInfoDeps struct {
	Tokens store.AccessTokenRepository
	Users  store.UserRepository
}

type userInfoService struct {
	deps UserInfoDeps
}

func NewUserInfoService(d UserInfoDeps) UserInfoService {
	return &userInfoService{deps: d}
}

func (s *userInfoService) UserInfo(ctx context.Context, accessToken string) (*dto.UserInfoResponse, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	at, err := s.deps.Tokens.GetAccessTokenByHash(ctx, tokens.HashSecret(accessToken))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get access token: %w", err)
	}

	user, err := s.deps.Users.GetUserByID(ctx, at.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive || user.TenantID != at.TenantID {
		return nil, ErrInvalidToken
	}

	return claimsFor(user, at.Scopes), nil
}

// claimsFor filtra por scope: profile → nombre, email → email.
func claimsFor(u *store.User, scopes []string) *dto.UserInfoResponse {
	out := &dto.UserInfoResponse{Sub: u.ID}
	for _, sc := range scopes {
		switch sc {
		case "profile":
			out.Name = displayName(u.FirstName, u.LastName)
			out.GivenName = u.FirstName
			out.FamilyName = u.LastName
		case "email":
			verified := u.EmailVerified
			out.Email = u.Email
			out.EmailVerified = &verified
		}
	}
	return out
}

// displayName une las partes no vacías del nombre con un espacio.
func displayName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// ─── Agregador ───

// Deps contiene las dependencias para crear los services OIDC.
type Deps struct {
	Issuer string
	JWKS   *jwtx.JWKS
	Store  store.Store
}

// Services agrupa los services OIDC.
type Services struct {
	Discovery DiscoveryService
	JWKS      JWKSService
	UserInfo  UserInfoService
}

func NewServices(d Deps) Services {
	return Services{
		Discovery: NewDiscoveryService(d.Issuer),
		JWKS:      NewJWKSService(d.JWKS),
		UserInfo:  NewUserInfoService(UserInfoDeps{Tokens: d.Store, Users: d.Store}),
	}
}
