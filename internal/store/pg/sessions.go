package pg

import (
	"context"
	"time"

	"github.com/dropDatabas3/authflow/internal/store"
)

func (s *Store) CreateSession(ctx context.Context, sess *store.Session) error {
	if sess.ID == "" {
		sess.ID = newID()
	}
	const q = `
		INSERT INTO sessions (id, user_id, tenant_id, token, refresh_token_hash, ip_address, user_agent, expires_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at`
	err := s.pool.QueryRow(ctx, q, sess.ID, sess.UserID, nullable(sess.TenantID), sess.Token, sess.RefreshTokenHash,
		nullable(sess.IPAddress), nullable(sess.UserAgent), sess.ExpiresAt, sess.IsActive).Scan(&sess.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetSessionByRefreshHash(ctx context.Context, refreshHash string) (*store.Session, error) {
	const q = `
		SELECT id, user_id, COALESCE(tenant_id, ''), token, refresh_token_hash, COALESCE(ip_address, ''),
			COALESCE(user_agent, ''), expires_at, is_active, created_at
		FROM sessions
		WHERE refresh_token_hash = $1 AND is_active AND expires_at > NOW()`
	var sess store.Session
	err := s.pool.QueryRow(ctx, q, refreshHash).Scan(&sess.ID, &sess.UserID, &sess.TenantID, &sess.Token,
		&sess.RefreshTokenHash, &sess.IPAddress, &sess.UserAgent, &sess.ExpiresAt, &sess.IsActive, &sess.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sess, nil
}

// UpdateSessionToken guarda el JWT renovado; el vencimiento de la fila sigue
// atado al refresh opaco, no al JWT.
func (s *Store) UpdateSessionToken(ctx context.Context, id, token string, _ time.Time) error {
	return affected(s.pool.Exec(ctx, `UPDATE sessions SET token = $2 WHERE id = $1 AND is_active`, id, token))
}

func (s *Store) DeactivateSession(ctx context.Context, id string) error {
	return affected(s.pool.Exec(ctx, `UPDATE sessions SET is_active = FALSE WHERE id = $1`, id))
}
