package pg

import (
	"context"

	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/jackc/pgx/v5"
)

// La tabla users pertenece al resto de la plataforma; aquí sólo se lee.
const userColumns = `id, COALESCE(tenant_id, ''), email, email_verified, COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(password_hash, ''), role, is_active, created_at`

func scanUser(row pgx.Row) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.EmailVerified, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`, email))
}
