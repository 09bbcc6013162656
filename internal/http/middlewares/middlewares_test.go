package middlewares

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/authflow/internal/http/errors"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/rate"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/dropDatabas3/authflow/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyOnce sync.Once
	testKey *jwtx.KeyPair
)

func sharedKey(t *testing.T) *jwtx.KeyPair {
	t.Helper()
	keyOnce.Do(func() {
		kp, err := jwtx.GenerateKeyPair(2048)
		if err != nil {
			panic(err)
		}
		testKey = kp
	})
	return testKey
}

type fixture struct {
	st     *memory.Store
	auth   *Authenticator
	issuer *jwtx.SessionIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	signer, err := jwtx.NewSigner(sharedKey(t))
	require.NoError(t, err)
	iss := jwtx.NewSessionIssuer("https://auth.test", signer)

	st := memory.New()
	st.PutUser(&store.User{ID: "u-admin", TenantID: "t1", Email: "admin@t1.test", Role: store.RoleTenantAdmin, IsActive: true})
	st.PutUser(&store.User{ID: "u-user", TenantID: "t1", Email: "user@t1.test", Role: store.RoleUser, IsActive: true})
	st.PutUser(&store.User{ID: "u-off", TenantID: "t1", Email: "off@t1.test", Role: store.RoleTenantAdmin, IsActive: false})

	return &fixture{
		st:     st,
		issuer: iss,
		auth: &Authenticator{
			Users: st, APIKeys: st, Sessions: iss,
			CookieName: "token", AllowBearer: true, TouchTimeout: time.Second,
		},
	}
}

func (f *fixture) session(t *testing.T, userID string) string {
	t.Helper()
	u, err := f.st.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	tok, _, err := f.issuer.IssueSession(u.ID, u.Email, u.Role, u.TenantID)
	require.NoError(t, err)
	return tok
}

func (f *fixture) apiKey(t *testing.T, owner string, perms []string, expires *time.Time) (string, *store.APIKey) {
	t.Helper()
	key, hash, prefix, err := tokens.GenerateAPIKey()
	require.NoError(t, err)
	k := &store.APIKey{TenantID: "t1", Name: "ci", KeyHash: hash, KeyPrefix: prefix,
		Permissions: perms, IsActive: true, ExpiresAt: expires, CreatedBy: owner}
	require.NoError(t, f.st.CreateAPIKey(context.Background(), k))
	return key, k
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		w.Header().Set("X-Auth-Method", p.Method)
		w.WriteHeader(http.StatusNoContent)
	})
}

func do(h http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/api/admin/x", nil)
	if mutate != nil {
		mutate(r)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func TestRequireAuth(t *testing.T) {
	f := newFixture(t)
	h := Chain(okHandler(), RequireAuth(f.auth))

	past := time.Now().Add(-time.Minute)
	validKey, _ := f.apiKey(t, "u-admin", []string{"*"}, nil)
	expiredKey, _ := f.apiKey(t, "u-admin", []string{"*"}, &past)
	orphanKey, _ := f.apiKey(t, "u-off", []string{"*"}, nil)
	revokedKey, revoked := f.apiKey(t, "u-admin", []string{"*"}, nil)
	require.NoError(t, f.st.RevokeAPIKey(context.Background(), revoked.ID, "t1"))

	tests := []struct {
		name   string
		mutate func(*http.Request)
		status int
		method string
	}{
		{"no credentials", nil, http.StatusUnauthorized, ""},
		{"session bearer", bearer(f.session(t, "u-user")), http.StatusNoContent, MethodSession},
		{"session cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "token", Value: f.session(t, "u-user")})
		}, http.StatusNoContent, MethodSession},
		{"inactive user session", bearer(f.session(t, "u-off")), http.StatusUnauthorized, ""},
		{"garbage jwt", bearer("a.b.c"), http.StatusUnauthorized, ""},
		{"api key", bearer(validKey), http.StatusNoContent, MethodAPIKey},
		{"unknown api key", bearer(tokens.APIKeyPrefix + "deadbeef"), http.StatusUnauthorized, ""},
		{"expired api key", bearer(expiredKey), http.StatusUnauthorized, ""},
		{"revoked api key", bearer(revokedKey), http.StatusUnauthorized, ""},
		{"inactive key owner", bearer(orphanKey), http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, tt.mutate)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.method, rec.Header().Get("X-Auth-Method"))
		})
	}
}

func TestRequireAuth_TouchesAPIKey(t *testing.T) {
	f := newFixture(t)
	key, k := f.apiKey(t, "u-admin", []string{"*"}, nil)

	rec := do(Chain(okHandler(), RequireAuth(f.auth)), bearer(key))
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.Eventually(t, func() bool {
		keys, err := f.st.ListAPIKeys(context.Background(), "t1")
		if err != nil {
			return false
		}
		for _, got := range keys {
			if got.ID == k.ID {
				return got.LastUsedAt != nil
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	wildcard, _ := f.apiKey(t, "u-admin", []string{"*"}, nil)
	readOnly, _ := f.apiKey(t, "u-admin", []string{PermAPIKeysRead}, nil)
	noPerms, _ := f.apiKey(t, "u-admin", nil, nil)
	userKey, _ := f.apiKey(t, "u-user", []string{"*"}, nil)

	tests := []struct {
		name   string
		roles  []string
		perm   string
		cred   string
		status int
	}{
		{"admin session", AdminRoles, PermAPIKeysWrite, f.session(t, "u-admin"), http.StatusNoContent},
		{"user session wrong role", AdminRoles, PermAPIKeysWrite, f.session(t, "u-user"), http.StatusForbidden},
		{"wildcard key", AdminRoles, PermAPIKeysWrite, wildcard, http.StatusNoContent},
		{"key with matching perm", AdminRoles, PermAPIKeysRead, readOnly, http.StatusNoContent},
		{"key missing perm", AdminRoles, PermAPIKeysWrite, readOnly, http.StatusForbidden},
		{"key on route without perm", AdminRoles, "", readOnly, http.StatusForbidden},
		{"key without perms", AdminRoles, PermAPIKeysRead, noPerms, http.StatusForbidden},
		{"wildcard key owner lacks role", AdminRoles, PermAPIKeysRead, userKey, http.StatusForbidden},
		{"empty roles accepts any role", nil, "", f.session(t, "u-user"), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Chain(okHandler(), RequireAuth(f.auth), Authorize(tt.roles, tt.perm))
			rec := do(h, bearer(tt.cred))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAuthorize_WithoutPrincipal(t *testing.T) {
	rec := do(Chain(okHandler(), Authorize(nil, "")), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession(t *testing.T) {
	f := newFixture(t)
	wildcard, _ := f.apiKey(t, "u-admin", []string{"*"}, nil)
	h := Chain(okHandler(), RequireSession(f.auth))

	rec := do(h, bearer(f.session(t, "u-admin")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, MethodSession, rec.Header().Get("X-Auth-Method"))

	rec = do(h, bearer(wildcard))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Auth-Method"))
	assert.Contains(t, rec.Body.String(), "requires a user session")

	assert.Equal(t, http.StatusUnauthorized, do(h, nil).Code)
}

func TestOptionalAuth(t *testing.T) {
	f := newFixture(t)
	key, _ := f.apiKey(t, "u-admin", []string{"*"}, nil)
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipal(r.Context()) == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.WriteHeader(http.StatusOK)
	}), OptionalAuth(f.auth))

	assert.Equal(t, http.StatusAccepted, do(h, nil).Code)
	assert.Equal(t, http.StatusAccepted, do(h, bearer("bad")).Code)
	assert.Equal(t, http.StatusAccepted, do(h, bearer(key)).Code)
	assert.Equal(t, http.StatusOK, do(h, bearer(f.session(t, "u-user"))).Code)
}

func TestWithMaxBody(t *testing.T) {
	assert.Nil(t, WithMaxBody(0))

	var readErr error
	h := WithMaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	require.NoError(t, readErr)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("definitely too long")))
	var mbe *http.MaxBytesError
	require.ErrorAs(t, readErr, &mbe)
}

func TestWithRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), WithRecover())
	rec := do(h, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	rec := do(h, nil)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	rec = do(h, func(r *http.Request) { r.Header.Set(HeaderRequestID, "abc") })
	assert.Equal(t, "abc", rec.Header().Get(HeaderRequestID))
}

func TestWithRateLimit(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), WithRateLimit(RateLimitConfig{
		Limiter: rate.NewMemoryLimiter(1, time.Minute),
		Bucket:  "login",
	}))

	assert.Equal(t, http.StatusNoContent, do(h, nil).Code)
	rec := do(h, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), errors.ErrTooManyRequests.Code)
}
