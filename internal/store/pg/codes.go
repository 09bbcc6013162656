package pg

import (
	"context"

	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/jackc/pgx/v5"
)

const codeColumns = `id, code_hash, client_id, user_id, tenant_id, redirect_uri, scopes,
	COALESCE(code_challenge, ''), COALESCE(code_challenge_method, ''), expires_at, created_at`

func scanCode(row pgx.Row) (*store.AuthorizationCode, error) {
	var c store.AuthorizationCode
	err := row.Scan(&c.ID, &c.CodeHash, &c.ClientID, &c.UserID, &c.TenantID, &c.RedirectURI, &c.Scopes,
		&c.CodeChallenge, &c.CodeChallengeMethod, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *Store) CreateCode(ctx context.Context, c *store.AuthorizationCode) error {
	if c.ID == "" {
		c.ID = newID()
	}
	const q = `
		INSERT INTO oauth2_authorization_codes (id, code_hash, client_id, user_id, tenant_id, redirect_uri,
			scopes, code_challenge, code_challenge_method, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at`
	err := s.pool.QueryRow(ctx, q, c.ID, c.CodeHash, c.ClientID, c.UserID, c.TenantID, c.RedirectURI,
		c.Scopes, nullable(c.CodeChallenge), nullable(c.CodeChallengeMethod), c.ExpiresAt).Scan(&c.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetCodeByHash(ctx context.Context, codeHash string) (*store.AuthorizationCode, error) {
	q := `SELECT ` + codeColumns + ` FROM oauth2_authorization_codes WHERE code_hash = $1 AND expires_at > NOW()`
	return scanCode(s.pool.QueryRow(ctx, q, codeHash))
}

func (s *Store) DeleteCode(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM oauth2_authorization_codes WHERE id = $1`, id)
	return mapErr(err)
}

// ConsumeCode: el DELETE toma el lock de fila; una segunda transacción
// concurrente re-evalúa el WHERE tras el commit y no devuelve filas.
func (s *Store) ConsumeCode(ctx context.Context, codeHash string) (*store.AuthorizationCode, error) {
	q := `DELETE FROM oauth2_authorization_codes WHERE code_hash = $1 AND expires_at > NOW() RETURNING ` + codeColumns
	return scanCode(s.pool.QueryRow(ctx, q, codeHash))
}
