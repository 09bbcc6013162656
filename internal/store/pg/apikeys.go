package pg

import (
	"context"
	"time"

	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/jackc/pgx/v5"
)

const apiKeyColumns = `id, tenant_id, name, key_hash, key_prefix, permissions, is_active, expires_at, last_used_at,
	COALESCE(created_by, ''), created_at`

func scanAPIKey(row pgx.Row) (*store.APIKey, error) {
	var k store.APIKey
	err := row.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Permissions, &k.IsActive,
		&k.ExpiresAt, &k.LastUsedAt, &k.CreatedBy, &k.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &k, nil
}

func (s *Store) CreateAPIKey(ctx context.Context, k *store.APIKey) error {
	if k.ID == "" {
		k.ID = newID()
	}
	if k.Permissions == nil {
		k.Permissions = []string{}
	}
	const q = `
		INSERT INTO api_keys (id, tenant_id, name, key_hash, key_prefix, permissions, is_active, expires_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at`
	err := s.pool.QueryRow(ctx, q, k.ID, k.TenantID, k.Name, k.KeyHash, k.KeyPrefix, k.Permissions, k.IsActive,
		k.ExpiresAt, nullable(k.CreatedBy)).Scan(&k.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*store.APIKey, error) {
	q := `SELECT ` + apiKeyColumns + ` FROM api_keys
		WHERE key_hash = $1 AND is_active AND (expires_at IS NULL OR expires_at > NOW())`
	return scanAPIKey(s.pool.QueryRow(ctx, q, keyHash))
}

func (s *Store) ListAPIKeys(ctx context.Context, tenantID string) ([]store.APIKey, error) {
	q := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]store.APIKey, 0)
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	return out, rows.Err()
}

func (s *Store) TouchAPIKey(ctx context.Context, id string, at time.Time) error {
	return affected(s.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at))
}

func (s *Store) RevokeAPIKey(ctx context.Context, id, tenantID string) error {
	return affected(s.pool.Exec(ctx, `UPDATE api_keys SET is_active = FALSE WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (s *Store) DeleteAPIKey(ctx context.Context, id, tenantID string) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}
