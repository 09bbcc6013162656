// Package store define el contrato de persistencia del servidor de autorización.
//
// Todo lookup por hash es exacto sobre la columna hash y excluye filas vencidas.
// Ningún secreto en claro llega a esta capa.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// IsNotFound es un helper para errors.Is(err, ErrNotFound).
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

type ClientRepository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClientByClientID(ctx context.Context, clientID string) (*Client, error)
	GetClientByID(ctx context.Context, id, tenantID string) (*Client, error)
	ListClients(ctx context.Context, tenantID string) ([]Client, error)
	DeleteClient(ctx context.Context, id, tenantID string) error
	UpdateClientSecret(ctx context.Context, id, tenantID, secretHash string) error
}

type CodeRepository interface {
	CreateCode(ctx context.Context, c *AuthorizationCode) error
	// GetCodeByHash sólo devuelve codes no vencidos.
	GetCodeByHash(ctx context.Context, codeHash string) (*AuthorizationCode, error)
	DeleteCode(ctx context.Context, id string) error
	// ConsumeCode borra y devuelve el code no vencido en una sola operación.
	// Ante dos llamadas concurrentes con el mismo hash, exactamente una gana;
	// la otra recibe ErrNotFound.
	ConsumeCode(ctx context.Context, codeHash string) (*AuthorizationCode, error)
}

type AccessTokenRepository interface {
	CreateAccessToken(ctx context.Context, t *AccessToken) error
	GetAccessTokenByHash(ctx context.Context, tokenHash string) (*AccessToken, error)
	DeleteAccessToken(ctx context.Context, id string) error
}

type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, t *RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	// ConsumeRefreshToken: mismo contrato atómico que ConsumeCode (rotación).
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, id string) error
}

type APIKeyRepository interface {
	CreateAPIKey(ctx context.Context, k *APIKey) error
	// GetAPIKeyByHash sólo devuelve keys activas y no vencidas.
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*APIKey, error)
	ListAPIKeys(ctx context.Context, tenantID string) ([]APIKey, error)
	TouchAPIKey(ctx context.Context, id string, at time.Time) error
	RevokeAPIKey(ctx context.Context, id, tenantID string) error
	DeleteAPIKey(ctx context.Context, id, tenantID string) error
}

// UserRepository es el colaborador externo de usuarios (sólo lectura).
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSessionByRefreshHash(ctx context.Context, refreshHash string) (*Session, error)
	UpdateSessionToken(ctx context.Context, id, token string, expiresAt time.Time) error
	DeactivateSession(ctx context.Context, id string) error
}

type Maintenance interface {
	PurgeExpired(ctx context.Context, now time.Time) (PurgeResult, error)
	Ping(ctx context.Context) error
	Close()
}

// Store agrega todos los repositorios. pg.Store y memory.Store lo implementan.
type Store interface {
	ClientRepository
	CodeRepository
	AccessTokenRepository
	RefreshTokenRepository
	APIKeyRepository
	UserRepository
	SessionRepository
	Maintenance
}
