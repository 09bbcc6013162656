package tokens

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpaque(t *testing.T) {
	tok, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	h, err := GenerateOpaqueHex(16)
	require.NoError(t, err)
	assert.Len(t, h, 32)

	other, _ := GenerateOpaqueHex(16)
	assert.NotEqual(t, h, other)

	_, err = GenerateOpaqueHex(0)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestHashSecretKnownVector(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashSecret("abc"))
}

func TestVerifySecret(t *testing.T) {
	h := HashSecret("client-secret")
	assert.True(t, VerifySecret("client-secret", h))
	assert.True(t, VerifySecret("client-secret", strings.ToUpper(h)))
	assert.False(t, VerifySecret("client-secreT", h))
	assert.False(t, VerifySecret("", h))
	assert.False(t, VerifySecret("client-secret", ""))
}

func TestGenerateAPIKey(t *testing.T) {
	key, hash, prefix, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, APIKeyPrefix))
	assert.Len(t, key, len(APIKeyPrefix)+64)
	assert.Equal(t, HashSecret(key), hash)
	assert.Equal(t, key[:12], prefix)
	assert.True(t, LooksLikeAPIKey(key))
	assert.False(t, LooksLikeAPIKey("eyJhbGciOiJSUzI1NiJ9.x.y"))
	assert.False(t, LooksLikeAPIKey(APIKeyPrefix))
}

func TestPayloadSignatureRoundTrip(t *testing.T) {
	secret, err := GenerateWebhookSecret()
	require.NoError(t, err)
	body := []byte(`{"event":"user.created"}`)
	now := time.Now()

	h := http.Header{}
	SignRequest(h, secret, body, now)
	require.NoError(t, VerifyRequest(h, secret, body, now.Add(time.Minute)))

	ts := h.Get(HeaderTimestamp)
	assert.Equal(t, SignPayload(secret, ts, body), h.Get(HeaderSignature))
}

func TestPayloadSignatureRejects(t *testing.T) {
	secret := "s"
	body := []byte("payload")
	now := time.UnixMilli(1_700_000_000_000)
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	sig := SignPayload(secret, ts, body)

	cases := []struct {
		name   string
		sig    string
		ts     string
		body   []byte
		at     time.Time
		secret string
		want   error
	}{
		{"missing signature", "", ts, body, now, secret, ErrSignatureMissing},
		{"missing timestamp", sig, "", body, now, secret, ErrSignatureMissing},
		{"bad timestamp", sig, "abc", body, now, secret, ErrSignatureTimestamp},
		{"too old", sig, ts, body, now.Add(5*time.Minute + time.Millisecond), secret, ErrSignatureTimestamp},
		{"future", sig, ts, body, now.Add(-6 * time.Minute), secret, ErrSignatureTimestamp},
		{"tampered body", sig, ts, []byte("payload!"), now, secret, ErrSignatureMismatch},
		{"wrong secret", sig, ts, body, now, "other", ErrSignatureMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifyPayloadSignature(tc.secret, tc.sig, tc.ts, tc.body, tc.at, 0)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// exactamente en el borde de la ventana sigue siendo válido
	assert.NoError(t, VerifyPayloadSignature(secret, sig, ts, body, now.Add(5*time.Minute), 0))
}
