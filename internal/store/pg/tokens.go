package pg

import (
	"context"

	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/jackc/pgx/v5"
)

// ─── access tokens ───

func (s *Store) CreateAccessToken(ctx context.Context, t *store.AccessToken) error {
	if t.ID == "" {
		t.ID = newID()
	}
	const q = `
		INSERT INTO oauth2_access_tokens (id, token_hash, client_id, user_id, tenant_id, scopes, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at`
	err := s.pool.QueryRow(ctx, q, t.ID, t.TokenHash, t.ClientID, t.UserID, t.TenantID, t.Scopes, t.ExpiresAt).
		Scan(&t.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetAccessTokenByHash(ctx context.Context, tokenHash string) (*store.AccessToken, error) {
	const q = `
		SELECT id, token_hash, client_id, user_id, tenant_id, scopes, expires_at, created_at
		FROM oauth2_access_tokens
		WHERE token_hash = $1 AND expires_at > NOW()`
	var t store.AccessToken
	err := s.pool.QueryRow(ctx, q, tokenHash).
		Scan(&t.ID, &t.TokenHash, &t.ClientID, &t.UserID, &t.TenantID, &t.Scopes, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (s *Store) DeleteAccessToken(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM oauth2_access_tokens WHERE id = $1`, id)
	return mapErr(err)
}

// ─── refresh tokens ───

const refreshColumns = `id, token_hash, COALESCE(access_token_id, ''), client_id, user_id, tenant_id, scopes, expires_at, created_at`

func scanRefresh(row pgx.Row) (*store.RefreshToken, error) {
	var t store.RefreshToken
	err := row.Scan(&t.ID, &t.TokenHash, &t.AccessTokenID, &t.ClientID, &t.UserID, &t.TenantID, &t.Scopes, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, t *store.RefreshToken) error {
	if t.ID == "" {
		t.ID = newID()
	}
	const q = `
		INSERT INTO oauth2_refresh_tokens (id, token_hash, access_token_id, client_id, user_id, tenant_id, scopes, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at`
	err := s.pool.QueryRow(ctx, q, t.ID, t.TokenHash, nullable(t.AccessTokenID), t.ClientID, t.UserID, t.TenantID, t.Scopes, t.ExpiresAt).
		Scan(&t.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	q := `SELECT ` + refreshColumns + ` FROM oauth2_refresh_tokens WHERE token_hash = $1 AND expires_at > NOW()`
	return scanRefresh(s.pool.QueryRow(ctx, q, tokenHash))
}

func (s *Store) ConsumeRefreshToken(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	q := `DELETE FROM oauth2_refresh_tokens WHERE token_hash = $1 AND expires_at > NOW() RETURNING ` + refreshColumns
	return scanRefresh(s.pool.QueryRow(ctx, q, tokenHash))
}

func (s *Store) DeleteRefreshToken(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM oauth2_refresh_tokens WHERE id = $1`, id)
	return mapErr(err)
}
