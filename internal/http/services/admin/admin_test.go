package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/admin"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/dropDatabas3/authflow/internal/store/memory"
)

var (
	adminT1 = Actor{TenantID: "t1", UserID: "u-admin", Method: "session"}
	adminT2 = Actor{TenantID: "t2", UserID: "u-other", Method: "session"}
)

func newServices() (Services, *memory.Store) {
	st := memory.New()
	return NewServices(Deps{Store: st}), st
}

func TestClients_CreateListDelete(t *testing.T) {
	s, st := newServices()
	ctx := context.Background()

	created, err := s.Clients.Create(ctx, adminT1, dto.CreateClientRequest{
		Name:         "Portal",
		RedirectURIs: []string{"https://portal.example.com/cb"},
	})
	require.NoError(t, err)
	assert.Len(t, created.ClientID, 32)
	assert.Len(t, created.ClientSecret, 64)
	assert.Equal(t, []string{"authorization_code", "refresh_token"}, created.GrantTypes)
	assert.Equal(t, []string{"openid", "profile", "email"}, created.Scopes)
	assert.True(t, created.IsActive)

	stored, err := st.GetClientByClientID(ctx, created.ClientID)
	require.NoError(t, err)
	assert.True(t, tokens.VerifySecret(created.ClientSecret, stored.ClientSecretHash))
	assert.Equal(t, "u-admin", stored.CreatedBy)

	list, err := s.Clients.List(ctx, adminT1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	other, err := s.Clients.List(ctx, adminT2)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.ErrorIs(t, s.Clients.Delete(ctx, adminT2, created.ID), ErrNotFound)
	require.NoError(t, s.Clients.Delete(ctx, adminT1, created.ID))
	require.ErrorIs(t, s.Clients.Delete(ctx, adminT1, created.ID), ErrNotFound)
}

func TestClients_RotateSecret(t *testing.T) {
	s, st := newServices()
	ctx := context.Background()
	created, err := s.Clients.Create(ctx, adminT1, dto.CreateClientRequest{
		Name: "Portal", RedirectURIs: []string{"https://portal.example.com/cb"},
	})
	require.NoError(t, err)

	_, err = s.Clients.RotateSecret(ctx, adminT2, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	rotated, err := s.Clients.RotateSecret(ctx, adminT1, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, created.ClientSecret, rotated.ClientSecret)
	assert.Equal(t, created.ClientID, rotated.ClientID)

	stored, err := st.GetClientByClientID(ctx, created.ClientID)
	require.NoError(t, err)
	assert.False(t, tokens.VerifySecret(created.ClientSecret, stored.ClientSecretHash))
	assert.True(t, tokens.VerifySecret(rotated.ClientSecret, stored.ClientSecretHash))
}

func TestClients_TenantRequired(t *testing.T) {
	s, _ := newServices()
	_, err := s.Clients.List(context.Background(), Actor{UserID: "root"})
	require.ErrorIs(t, err, ErrTenantRequired)
	_, err = s.Clients.Create(context.Background(), Actor{UserID: "root"}, dto.CreateClientRequest{Name: "x"})
	require.ErrorIs(t, err, ErrTenantRequired)
}

func TestClients_CreateRejectsInvalidInput(t *testing.T) {
	s, _ := newServices()
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.CreateClientRequest
	}{
		{"no redirect uris", dto.CreateClientRequest{Name: "x"}},
		{"plain http redirect", dto.CreateClientRequest{Name: "x", RedirectURIs: []string{"http://app.example.com/cb"}}},
		{"redirect with fragment", dto.CreateClientRequest{Name: "x", RedirectURIs: []string{"https://app.example.com/cb#x"}}},
		{"bad scope", dto.CreateClientRequest{Name: "x", RedirectURIs: []string{"https://app.example.com/cb"}, Scopes: []string{"openid", "Bad Scope"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Clients.Create(ctx, adminT1, tc.in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAPIKeys_Lifecycle(t *testing.T) {
	s, st := newServices()
	ctx := context.Background()

	created, err := s.APIKeys.Create(ctx, adminT1, dto.CreateAPIKeyRequest{
		Name:        "ci",
		Permissions: []string{"oauth2_clients:read"},
	})
	require.NoError(t, err)
	assert.True(t, tokens.LooksLikeAPIKey(created.Key))
	assert.Equal(t, created.Key[:len(created.KeyPrefix)], created.KeyPrefix)

	k, err := st.GetAPIKeyByHash(ctx, tokens.HashSecret(created.Key))
	require.NoError(t, err)
	assert.Equal(t, created.ID, k.ID)

	list, err := s.APIKeys.List(ctx, adminT1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsActive)

	require.ErrorIs(t, s.APIKeys.Revoke(ctx, adminT2, created.ID), ErrNotFound)
	require.NoError(t, s.APIKeys.Revoke(ctx, adminT1, created.ID))
	_, err = st.GetAPIKeyByHash(ctx, tokens.HashSecret(created.Key))
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.APIKeys.Delete(ctx, adminT1, created.ID))
	require.ErrorIs(t, s.APIKeys.Delete(ctx, adminT1, created.ID), ErrNotFound)
}

func TestAPIKeys_ExpiryMustBeFuture(t *testing.T) {
	s, _ := newServices()
	past := time.Now().Add(-time.Minute)
	_, err := s.APIKeys.Create(context.Background(), adminT1, dto.CreateAPIKeyRequest{Name: "old", ExpiresAt: &past})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAPIKeys_NoEscalationFromAPIKey(t *testing.T) {
	s, _ := newServices()
	ctx := context.Background()
	caller := Actor{TenantID: "t1", UserID: "u-admin", Method: "api_key", Permissions: []string{"api_keys:write"}}

	_, err := s.APIKeys.Create(ctx, caller, dto.CreateAPIKeyRequest{Name: "x", Permissions: []string{"*"}})
	require.ErrorIs(t, err, ErrEscalation)

	_, err = s.APIKeys.Create(ctx, caller, dto.CreateAPIKeyRequest{Name: "x", Permissions: []string{"api_keys:write"}})
	require.NoError(t, err)

	wildcard := Actor{TenantID: "t1", UserID: "u-admin", Method: "api_key", Permissions: []string{"*"}}
	_, err = s.APIKeys.Create(ctx, wildcard, dto.CreateAPIKeyRequest{Name: "y", Permissions: []string{"*"}})
	require.NoError(t, err)
}
