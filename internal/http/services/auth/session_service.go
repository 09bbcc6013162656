// Package auth implementa el login first-party: sesión JWT firmada con la
// llave del servidor más un refresh opaco persistido como hash.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	"github.com/dropDatabas3/authflow/internal/security/password"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/dropDatabas3/authflow/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// ClientInfo es lo que se guarda del cliente HTTP junto a la sesión.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// SessionService maneja login, refresh y logout de sesiones propias.
type SessionService interface {
	Login(ctx context.Context, in dto.LoginRequest, client ClientInfo) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// SessionStore es el subconjunto del store que usan las sesiones.
type SessionStore interface {
	store.UserRepository
	store.SessionRepository
}

// Deps contiene las dependencias del login.
type Deps struct {
	Store    SessionStore
	Issuer   *jwtx.SessionIssuer
	Password *password.Hasher
}

type sessionService struct {
	deps Deps

	dummyOnce sync.Once
	dummyHash string
}

func NewSessionService(d Deps) SessionService {
	if d.Password == nil {
		d.Password = password.New(password.DefaultCost)
	}
	return &sessionService{deps: d}
}

// dummy devuelve un hash válido para igualar el tiempo de respuesta cuando
// el email no existe.
func (s *sessionService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.deps.Password.Hash("authflow-timing-equalizer")
	})
	return s.dummyHash
}

func (s *sessionService) Login(ctx context.Context, in dto.LoginRequest, client ClientInfo) (*dto.LoginResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("SessionService.Login"))

	user, err := s.deps.Store.GetUserByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil && !store.IsNotFound(err) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		_ = s.deps.Password.Verify(in.Password, s.dummy())
		log.Info("login failed: unknown account", logger.String("email", util.MaskEmail(in.Email)))
		return nil, ErrInvalidCredentials
	}
	if !s.deps.Password.Verify(in.Password, user.PasswordHash) {
		log.Info("login failed", logger.UserID(user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || (in.TenantID != "" && user.TenantID != in.TenantID) {
		log.Info("login rejected", logger.UserID(user.ID), logger.Bool("active", user.IsActive))
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.deps.Issuer.IssueSession(user.ID, user.Email, user.Role, user.TenantID)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	refresh, refreshExp, err := s.deps.Issuer.IssueRefresh()
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	sess := &store.Session{
		UserID:           user.ID,
		TenantID:         user.TenantID,
		Token:            token,
		RefreshTokenHash: tokens.HashSecret(refresh),
		IPAddress:        client.IP,
		UserAgent:        client.UserAgent,
		ExpiresAt:        refreshExp,
		IsActive:         true,
	}
	if err := s.deps.Store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Info("login succeeded", logger.UserID(user.ID), logger.TenantID(user.TenantID))
	return &dto.LoginResponse{
		User:         dto.UserFromStore(user),
		Token:        token,
		ExpiresAt:    exp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
	}, nil
}

// Refresh emite un JWT nuevo para la sesión. El refresh opaco no rota.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefresh
	}
	sess, err := s.deps.Store.GetSessionByRefreshHash(ctx, tokens.HashSecret(refreshToken))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	user, err := s.deps.Store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidRefresh
	}

	token, exp, err := s.deps.Issuer.IssueSession(user.ID, user.Email, user.Role, user.TenantID)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	if err := s.deps.Store.UpdateSessionToken(ctx, sess.ID, token, sess.ExpiresAt); err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("update session: %w", err)
	}
	return &dto.RefreshResponse{Token: token, ExpiresAt: exp}, nil
}

// Logout desactiva la sesión del refresh dado. Sin refresh es un no-op.
func (s *sessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	sess, err := s.deps.Store.GetSessionByRefreshHash(ctx, tokens.HashSecret(refreshToken))
	if err != nil {
		if store.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}
	if err := s.deps.Store.DeactivateSession(ctx, sess.ID); err != nil && !store.IsNotFound(err) {
		return fmt.Errorf("deactivate session: %w", err)
	}
	return nil
}
