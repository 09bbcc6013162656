// Package tokens agrupa los primitivos para secretos opacos de alta entropía:
// generación, hash rápido determinístico y comparación en tiempo constante.
//
// Los secretos opacos (client secrets, codes, access/refresh tokens, API keys)
// sólo se persisten como SHA-256 hex; su entropía hace innecesario un hash lento.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidLength = errors.New("tokens: invalid byte length")

func randomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateOpaqueToken genera un token aleatorio en base64url sin padding.
func GenerateOpaqueToken(nBytes int) (string, error) {
	b, err := randomBytes(nBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateOpaqueHex genera un token aleatorio en hex (2*nBytes caracteres).
func GenerateOpaqueHex(nBytes int) (string, error) {
	b, err := randomBytes(nBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashSecret devuelve sha256(plain) en hex minúscula. Es la forma persistida.
func HashSecret(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// VerifySecret re-hashea y compara en tiempo constante.
func VerifySecret(plain, hexHash string) bool {
	if plain == "" || hexHash == "" {
		return false
	}
	got := HashSecret(plain)
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(hexHash))) == 1
}

// Equal compara dos strings en tiempo constante.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
