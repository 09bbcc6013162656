package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dto "github.com/dropDatabas3/authflow/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/security/password"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/dropDatabas3/authflow/internal/store/memory"
)

var (
	keyOnce sync.Once
	testKey *jwtx.KeyPair
)

type fixture struct {
	svc    SessionService
	store  *memory.Store
	issuer *jwtx.SessionIssuer
	alice  *store.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	keyOnce.Do(func() {
		kp, err := jwtx.GenerateKeyPair(2048)
		require.NoError(t, err)
		testKey = kp
	})
	signer, err := jwtx.NewSigner(testKey)
	require.NoError(t, err)
	issuer := jwtx.NewSessionIssuer("https://auth.example.com", signer)

	hasher := password.New(bcrypt.MinCost)
	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)

	st := memory.New()
	alice := &store.User{TenantID: "t1", Email: "alice@example.com", PasswordHash: hash, Role: store.RoleUser, IsActive: true}
	st.PutUser(alice)

	return &fixture{
		svc:    NewSessionService(Deps{Store: st, Issuer: issuer, Password: hasher}),
		store:  st,
		issuer: issuer,
		alice:  alice,
	}
}

func (f *fixture) login(t *testing.T) *dto.LoginResponse {
	t.Helper()
	out, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "correct horse"}, ClientInfo{IP: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	return out
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	out := f.login(t)

	assert.Equal(t, f.alice.ID, out.User.ID)
	assert.Equal(t, "t1", out.User.TenantID)
	assert.Len(t, out.RefreshToken, 64)

	claims, err := f.issuer.Decode(out.Token)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, claims.UserID)
	assert.Equal(t, "t1", claims.TenantID)

	sess, err := f.store.GetSessionByRefreshHash(context.Background(), tokens.HashSecret(out.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, sess.UserID)
	assert.Equal(t, "10.0.0.1", sess.IPAddress)
	assert.Equal(t, out.Token, sess.Token)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob := &store.User{TenantID: "t1", Email: "bob@example.com", PasswordHash: f.alice.PasswordHash, IsActive: false}
	f.store.PutUser(bob)

	cases := []struct {
		name string
		in   dto.LoginRequest
	}{
		{"unknown email", dto.LoginRequest{Email: "nobody@example.com", Password: "correct horse"}},
		{"wrong password", dto.LoginRequest{Email: "alice@example.com", Password: "nope"}},
		{"inactive user", dto.LoginRequest{Email: "bob@example.com", Password: "correct horse"}},
		{"other tenant", dto.LoginRequest{Email: "alice@example.com", Password: "correct horse", TenantID: "t2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tc.in, ClientInfo{})
			require.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestRefresh_IssuesNewSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.login(t)

	next, err := f.svc.Refresh(ctx, out.RefreshToken)
	require.NoError(t, err)
	claims, err := f.issuer.Decode(next.Token)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, claims.UserID)

	sess, err := f.store.GetSessionByRefreshHash(ctx, tokens.HashSecret(out.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, next.Token, sess.Token)

	_, err = f.svc.Refresh(ctx, "")
	require.ErrorIs(t, err, ErrInvalidRefresh)
	_, err = f.svc.Refresh(ctx, "deadbeef")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_InactiveUser(t *testing.T) {
	f := newFixture(t)
	out := f.login(t)

	f.alice.IsActive = false
	f.store.PutUser(f.alice)

	_, err := f.svc.Refresh(context.Background(), out.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogout_DeactivatesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.login(t)

	require.NoError(t, f.svc.Logout(ctx, out.RefreshToken))
	_, err := f.svc.Refresh(ctx, out.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// idempotente
	require.NoError(t, f.svc.Logout(ctx, out.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, ""))
}
