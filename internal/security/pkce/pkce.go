// Package pkce implementa la verificación RFC 7636 del token endpoint.
package pkce

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

const (
	MethodS256  = "S256"
	MethodPlain = "plain"
)

// ValidMethod indica si el método está soportado. Vacío no es válido.
func ValidMethod(m string) bool {
	return m == MethodS256 || m == MethodPlain
}

// ChallengeS256 = base64url(sha256(verifier)) sin padding.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Verify calcula el challenge con el método guardado y compara exacto.
// Un método vacío se trata como "plain" (RFC 7636 §4.3).
func Verify(method, challenge, verifier string) bool {
	if challenge == "" || verifier == "" {
		return false
	}
	var computed string
	switch method {
	case MethodS256:
		computed = ChallengeS256(verifier)
	case MethodPlain, "":
		computed = verifier
	default:
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
