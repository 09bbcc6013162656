package oauth

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropDatabas3/authflow/internal/cache"
)

const requestKeyPrefix = "oauth:authreq:"

// AuthRequestState es el authorize pendiente de consentimiento.
// Vive en el cache (no en la sesión HTTP) para que cualquier réplica lo vea.
type AuthRequestState struct {
	ID                  string    `json:"id"`
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	ResponseType        string    `json:"response_type"`
	Scope               string    `json:"scope"`
	State               string    `json:"state,omitempty"`
	CodeChallenge       string    `json:"code_challenge,omitempty"`
	CodeChallengeMethod string    `json:"code_challenge_method,omitempty"`
	UserID              string    `json:"user_id"`
	TenantID            string    `json:"tenant_id"`
	CreatedAt           time.Time `json:"created_at"`
}

// RequestStore persiste AuthRequestState con TTL.
type RequestStore struct {
	cache cache.Client
	ttl   time.Duration
}

func NewRequestStore(c cache.Client, ttl time.Duration) *RequestStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RequestStore{cache: c, ttl: ttl}
}

func requestKey(id string) string { return requestKeyPrefix + id }

// validRequestID: 32 bytes en hex. Cualquier otra cosa no llega al cache.
func validRequestID(id string) bool {
	if len(id) != 64 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

func (s *RequestStore) Save(ctx context.Context, st *AuthRequestState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode auth request: %w", err)
	}
	if err := s.cache.Set(ctx, requestKey(st.ID), string(raw), s.ttl); err != nil {
		return fmt.Errorf("save auth request: %w", err)
	}
	return nil
}

// Get devuelve ErrRequestNotFound si no existe o venció.
func (s *RequestStore) Get(ctx context.Context, id string) (*AuthRequestState, error) {
	if !validRequestID(id) {
		return nil, ErrRequestNotFound
	}
	raw, err := s.cache.Get(ctx, requestKey(id))
	return decodeState(raw, err)
}

// Consume lee y borra en una sola operación: una sola decisión por request.
func (s *RequestStore) Consume(ctx context.Context, id string) (*AuthRequestState, error) {
	if !validRequestID(id) {
		return nil, ErrRequestNotFound
	}
	raw, err := s.cache.GetDel(ctx, requestKey(id))
	return decodeState(raw, err)
}

func decodeState(raw string, err error) (*AuthRequestState, error) {
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load auth request: %w", err)
	}
	var st AuthRequestState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode auth request: %w", err)
	}
	return &st, nil
}
