package oidc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/dropDatabas3/authflow/internal/store/memory"
)

func seedToken(t *testing.T, st *memory.Store, userID, tenantID string, scopes []string, ttl time.Duration) string {
	t.Helper()
	raw, err := tokens.GenerateOpaqueToken(32)
	require.NoError(t, err)
	require.NoError(t, st.CreateAccessToken(context.Background(), &store.AccessToken{
		TokenHash: tokens.HashSecret(raw),
		ClientID:  "client-1",
		UserID:    userID,
		TenantID:  tenantID,
		Scopes:    scopes,
		ExpiresAt: time.Now().Add(ttl),
	}))
	return raw
}

func TestUserInfo_ScopeGating(t *testing.T) {
	st := memory.New()
	st.PutUser(&store.User{ID: "u1", TenantID: "t1", Email: "ada@example.com", EmailVerified: true,
		FirstName: "Ada", LastName: "Lovelace", IsActive: true})
	svc := NewUserInfoService(UserInfoDeps{Tokens: st, Users: st})
	ctx := context.Background()

	verified := true
	cases := []struct {
		name   string
		scopes []string
		want   string
	}{
		{"openid only", []string{"openid"}, `{"sub":"u1"}`},
		{"profile", []string{"openid", "profile"}, `{"sub":"u1","name":"Ada Lovelace","given_name":"Ada","family_name":"Lovelace"}`},
		{"email", []string{"openid", "email"}, `{"sub":"u1","email":"ada@example.com","email_verified":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := seedToken(t, st, "u1", "t1", tc.scopes, time.Hour)
			resp, err := svc.UserInfo(ctx, tok)
			require.NoError(t, err)
			raw, err := json.Marshal(resp)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(raw))
		})
	}

	tok := seedToken(t, st, "u1", "t1", []string{"profile", "email"}, time.Hour)
	resp, err := svc.UserInfo(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, &verified, resp.EmailVerified)
	assert.Equal(t, "Ada", resp.GivenName)
}

func TestUserInfo_NameWithMissingParts(t *testing.T) {
	cases := []struct {
		first, last string
		want        string
	}{
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
		{" Ada ", " Lovelace", "Ada Lovelace"},
		{"", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			u := &store.User{ID: "u1", FirstName: tc.first, LastName: tc.last}
			got := claimsFor(u, []string{"openid", "profile"})
			assert.Equal(t, tc.want, got.Name)
		})
	}

	st := memory.New()
	st.PutUser(&store.User{ID: "u2", TenantID: "t1", FirstName: "Ada", IsActive: true})
	svc := NewUserInfoService(UserInfoDeps{Tokens: st, Users: st})
	resp, err := svc.UserInfo(context.Background(), seedToken(t, st, "u2", "t1", []string{"profile"}, time.Hour))
	require.NoError(t, err)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sub":"u2","name":"Ada","given_name":"Ada"}`, string(raw))
}

func TestUserInfo_Errors(t *testing.T) {
	st := memory.New()
	st.PutUser(&store.User{ID: "u1", TenantID: "t1", IsActive: true})
	st.PutUser(&store.User{ID: "u-off", TenantID: "t1", IsActive: false})
	svc := NewUserInfoService(UserInfoDeps{Tokens: st, Users: st})
	ctx := context.Background()

	_, err := svc.UserInfo(ctx, "")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.UserInfo(ctx, "unknown")
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := seedToken(t, st, "u1", "t1", []string{"openid"}, -time.Second)
	_, err = svc.UserInfo(ctx, expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	orphan := seedToken(t, st, "u-ghost", "t1", []string{"openid"}, time.Hour)
	_, err = svc.UserInfo(ctx, orphan)
	require.ErrorIs(t, err, ErrUserNotFound)

	inactive := seedToken(t, st, "u-off", "t1", []string{"openid"}, time.Hour)
	_, err = svc.UserInfo(ctx, inactive)
	require.ErrorIs(t, err, ErrInvalidToken)

	crossTenant := seedToken(t, st, "u1", "t2", []string{"openid"}, time.Hour)
	_, err = svc.UserInfo(ctx, crossTenant)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDiscovery_Metadata(t *testing.T) {
	m := NewDiscoveryService("https://auth.example.com/").Metadata(context.Background())
	assert.Equal(t, "https://auth.example.com", m.Issuer)
	assert.Equal(t, "https://auth.example.com/oauth2/token", m.TokenEndpoint)
	assert.Equal(t, "https://auth.example.com/.well-known/jwks.json", m.JWKSURI)
	assert.Equal(t, []string{"RS256"}, m.IDTokenSigningAlgValuesSupported)
	assert.Equal(t, []string{"S256", "plain"}, m.CodeChallengeMethodsSupported)
	assert.Equal(t, []string{"client_secret_post", "client_secret_basic"}, m.TokenEndpointAuthMethodsSupported)
}

func TestJWKS_PublicKeyOnly(t *testing.T) {
	kp, err := jwtx.GenerateKeyPair(2048)
	require.NoError(t, err)
	raw, err := NewJWKSService(jwtx.NewJWKS(kp)).JWKS(context.Background())
	require.NoError(t, err)

	var set struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(raw, &set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, kp.KID, set.Keys[0]["kid"])
	assert.Equal(t, "RSA", set.Keys[0]["kty"])
	assert.NotContains(t, set.Keys[0], "d")
}
