package pg

import (
	"context"

	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, tenant_id, client_id, client_secret_hash, name, COALESCE(description, ''),
	redirect_uris, grant_types, response_types, scopes, is_active, COALESCE(created_by, ''), created_at, updated_at`

func scanClient(row pgx.Row) (*store.Client, error) {
	var c store.Client
	err := row.Scan(&c.ID, &c.TenantID, &c.ClientID, &c.ClientSecretHash, &c.Name, &c.Description,
		&c.RedirectURIs, &c.GrantTypes, &c.ResponseTypes, &c.Scopes, &c.IsActive, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, c *store.Client) error {
	if c.ID == "" {
		c.ID = newID()
	}
	const q = `
		INSERT INTO oauth2_clients (id, tenant_id, client_id, client_secret_hash, name, description,
			redirect_uris, grant_types, response_types, scopes, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at`
	err := s.pool.QueryRow(ctx, q, c.ID, c.TenantID, c.ClientID, c.ClientSecretHash, c.Name, nullable(c.Description),
		c.RedirectURIs, c.GrantTypes, c.ResponseTypes, c.Scopes, c.IsActive, nullable(c.CreatedBy)).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapErr(err)
}

func (s *Store) GetClientByClientID(ctx context.Context, clientID string) (*store.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM oauth2_clients WHERE client_id = $1`
	return scanClient(s.pool.QueryRow(ctx, q, clientID))
}

func (s *Store) GetClientByID(ctx context.Context, id, tenantID string) (*store.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM oauth2_clients WHERE id = $1 AND tenant_id = $2`
	return scanClient(s.pool.QueryRow(ctx, q, id, tenantID))
}

func (s *Store) ListClients(ctx context.Context, tenantID string) ([]store.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM oauth2_clients WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]store.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) DeleteClient(ctx context.Context, id, tenantID string) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM oauth2_clients WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

func (s *Store) UpdateClientSecret(ctx context.Context, id, tenantID, secretHash string) error {
	const q = `UPDATE oauth2_clients SET client_secret_hash = $3, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`
	return affected(s.pool.Exec(ctx, q, id, tenantID, secretHash))
}
