package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/authflow/internal/store"
)

// PurgeExpired borra filas vencidas en now. Cada DELETE es independiente:
// un fallo parcial devuelve lo purgado hasta ahí junto con el error.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (store.PurgeResult, error) {
	var r store.PurgeResult
	steps := []struct {
		table string
		dst   *int64
	}{
		{"oauth2_authorization_codes", &r.Codes},
		{"oauth2_refresh_tokens", &r.RefreshTokens},
		{"oauth2_access_tokens", &r.AccessTokens},
		{"sessions", &r.Sessions},
	}
	for _, st := range steps {
		tag, err := s.pool.Exec(ctx, `DELETE FROM `+st.table+` WHERE expires_at <= $1`, now)
		if err != nil {
			return r, fmt.Errorf("purge %s: %w", st.table, err)
		}
		*st.dst = tag.RowsAffected()
	}
	return r, nil
}
