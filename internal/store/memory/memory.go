// Package memory implementa store.Store en memoria. Lo usan los tests y
// storage.driver=memory (un solo proceso; no comparte estado entre réplicas).
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/google/uuid"
)

// Store guarda todo bajo un único mutex: cada operación es atómica.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users    map[string]*store.User
	clients  map[string]*store.Client // por id de fila
	codes    map[string]*store.AuthorizationCode
	access   map[string]*store.AccessToken
	refresh  map[string]*store.RefreshToken
	apiKeys  map[string]*store.APIKey
	sessions map[string]*store.Session
}

var _ store.Store = (*Store)(nil)

// New crea un store vacío.
func New() *Store {
	return &Store{
		now:      time.Now,
		users:    map[string]*store.User{},
		clients:  map[string]*store.Client{},
		codes:    map[string]*store.AuthorizationCode{},
		access:   map[string]*store.AccessToken{},
		refresh:  map[string]*store.RefreshToken{},
		apiKeys:  map[string]*store.APIKey{},
		sessions: map[string]*store.Session{},
	}
}

// WithClock reemplaza el reloj usado para filtrar vencidos (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

func newID() string { return uuid.NewString() }

// ─── Users (seed) ───

// PutUser inserta o reemplaza un usuario. El CRUD de usuarios vive fuera del core.
func (s *Store) PutUser(u *store.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	if cp.ID == "" {
		cp.ID = newID()
		u.ID = cp.ID
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.users[cp.ID] = &cp
}

func (s *Store) GetUserByID(_ context.Context, id string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

// ─── Clients ───

func cloneClient(c *store.Client) *store.Client {
	cp := *c
	cp.RedirectURIs = slices.Clone(c.RedirectURIs)
	cp.GrantTypes = slices.Clone(c.GrantTypes)
	cp.ResponseTypes = slices.Clone(c.ResponseTypes)
	cp.Scopes = slices.Clone(c.Scopes)
	return &cp
}

func (s *Store) CreateClient(_ context.Context, c *store.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.clients {
		if existing.ClientID == c.ClientID {
			return store.ErrConflict
		}
	}
	if c.ID == "" {
		c.ID = newID()
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.clients[c.ID] = cloneClient(c)
	return nil
}

func (s *Store) GetClientByClientID(_ context.Context, clientID string) (*store.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.ClientID == clientID {
			return cloneClient(c), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetClientByID(_ context.Context, id, tenantID string) (*store.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok || c.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return cloneClient(c), nil
}

func (s *Store) ListClients(_ context.Context, tenantID string) ([]store.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Client, 0)
	for _, c := range s.clients {
		if c.TenantID == tenantID {
			out = append(out, *cloneClient(c))
		}
	}
	slices.SortFunc(out, func(a, b store.Client) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) DeleteClient(_ context.Context, id, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok || c.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

func (s *Store) UpdateClientSecret(_ context.Context, id, tenantID, secretHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok || c.TenantID != tenantID {
		return store.ErrNotFound
	}
	c.ClientSecretHash = secretHash
	c.UpdatedAt = s.now()
	return nil
}

// ─── Authorization codes ───

func (s *Store) CreateCode(_ context.Context, c *store.AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt = s.now()
	cp := *c
	cp.Scopes = slices.Clone(c.Scopes)
	s.codes[c.ID] = &cp
	return nil
}

func (s *Store) findCodeLocked(hash string) *store.AuthorizationCode {
	now := s.now()
	for _, c := range s.codes {
		if c.CodeHash == hash && now.Before(c.ExpiresAt) {
			return c
		}
	}
	return nil
}

func (s *Store) GetCodeByHash(_ context.Context, hash string) (*store.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findCodeLocked(hash)
	if c == nil {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) DeleteCode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, id)
	return nil
}

func (s *Store) ConsumeCode(_ context.Context, hash string) (*store.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findCodeLocked(hash)
	if c == nil {
		return nil, store.ErrNotFound
	}
	delete(s.codes, c.ID)
	return c, nil
}

// ─── Access / refresh tokens ───

func (s *Store) CreateAccessToken(_ context.Context, t *store.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = newID()
	}
	t.CreatedAt = s.now()
	cp := *t
	cp.Scopes = slices.Clone(t.Scopes)
	s.access[t.ID] = &cp
	return nil
}

func (s *Store) GetAccessTokenByHash(_ context.Context, hash string) (*store.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, t := range s.access {
		if t.TokenHash == hash && now.Before(t.ExpiresAt) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteAccessToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.access, id)
	return nil
}

func (s *Store) CreateRefreshToken(_ context.Context, t *store.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = newID()
	}
	t.CreatedAt = s.now()
	cp := *t
	cp.Scopes = slices.Clone(t.Scopes)
	s.refresh[t.ID] = &cp
	return nil
}

func (s *Store) findRefreshLocked(hash string) *store.RefreshToken {
	now := s.now()
	for _, t := range s.refresh {
		if t.TokenHash == hash && now.Before(t.ExpiresAt) {
			return t
		}
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(_ context.Context, hash string) (*store.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findRefreshLocked(hash)
	if t == nil {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) ConsumeRefreshToken(_ context.Context, hash string) (*store.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findRefreshLocked(hash)
	if t == nil {
		return nil, store.ErrNotFound
	}
	delete(s.refresh, t.ID)
	return t, nil
}

func (s *Store) DeleteRefreshToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, id)
	return nil
}

// ─── API keys ───

func cloneKey(k *store.APIKey) *store.APIKey {
	cp := *k
	cp.Permissions = slices.Clone(k.Permissions)
	if k.ExpiresAt != nil {
		t := *k.ExpiresAt
		cp.ExpiresAt = &t
	}
	if k.LastUsedAt != nil {
		t := *k.LastUsedAt
		cp.LastUsedAt = &t
	}
	return &cp
}

func (s *Store) CreateAPIKey(_ context.Context, k *store.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apiKeys {
		if existing.KeyHash == k.KeyHash {
			return store.ErrConflict
		}
	}
	if k.ID == "" {
		k.ID = newID()
	}
	k.CreatedAt = s.now()
	s.apiKeys[k.ID] = cloneKey(k)
	return nil
}

func (s *Store) GetAPIKeyByHash(_ context.Context, hash string) (*store.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, k := range s.apiKeys {
		if k.KeyHash == hash && k.Usable(now) {
			return cloneKey(k), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListAPIKeys(_ context.Context, tenantID string) ([]store.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.APIKey, 0)
	for _, k := range s.apiKeys {
		if k.TenantID == tenantID {
			out = append(out, *cloneKey(k))
		}
	}
	slices.SortFunc(out, func(a, b store.APIKey) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) TouchAPIKey(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[id]
	if !ok {
		return store.ErrNotFound
	}
	t := at
	k.LastUsedAt = &t
	return nil
}

func (s *Store) RevokeAPIKey(_ context.Context, id, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[id]
	if !ok || k.TenantID != tenantID {
		return store.ErrNotFound
	}
	k.IsActive = false
	return nil
}

func (s *Store) DeleteAPIKey(_ context.Context, id, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[id]
	if !ok || k.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(s.apiKeys, id)
	return nil
}

// ─── Sessions ───

func (s *Store) CreateSession(_ context.Context, sess *store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.ID == "" {
		sess.ID = newID()
	}
	sess.CreatedAt = s.now()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *Store) GetSessionByRefreshHash(_ context.Context, hash string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, sess := range s.sessions {
		if sess.RefreshTokenHash == hash && sess.IsActive && now.Before(sess.ExpiresAt) {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateSessionToken(_ context.Context, id, token string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	sess.Token = token
	return nil
}

func (s *Store) DeactivateSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	sess.IsActive = false
	return nil
}

// ─── Maintenance ───

func (s *Store) PurgeExpired(_ context.Context, now time.Time) (store.PurgeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var r store.PurgeResult
	for id, c := range s.codes {
		if !now.Before(c.ExpiresAt) {
			delete(s.codes, id)
			r.Codes++
		}
	}
	for id, t := range s.access {
		if !now.Before(t.ExpiresAt) {
			delete(s.access, id)
			r.AccessTokens++
		}
	}
	for id, t := range s.refresh {
		if !now.Before(t.ExpiresAt) {
			delete(s.refresh, id)
			r.RefreshTokens++
		}
	}
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			r.Sessions++
		}
	}
	return r, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}
