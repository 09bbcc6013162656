package jwt

import (
	"errors"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSignature cubre firma inválida, algoritmo distinto de RS256 y expiración.
// La causa concreta queda envuelta (errors.Is con jwtv5.ErrTokenExpired, etc.).
var ErrInvalidSignature = errors.New("jwt: invalid signature")

// Signer firma y verifica con un KeyPair fijo. Sin negociación de algoritmo.
type Signer struct {
	keys *KeyPair
}

// NewSigner valida el par y devuelve el signer.
func NewSigner(kp *KeyPair) (*Signer, error) {
	if err := kp.validate(); err != nil {
		return nil, err
	}
	return &Signer{keys: kp}, nil
}

// KID devuelve el kid que viaja en cada header.
func (s *Signer) KID() string { return s.keys.KID }

// Keys expone el par (sólo lectura) para el export JWKS.
func (s *Signer) Keys() *KeyPair { return s.keys }

// Sign firma claims con RS256 y kid/typ en el header.
func (s *Signer) Sign(claims jwtv5.Claims) (string, error) {
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tk.Header["kid"] = s.keys.KID
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(s.keys.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return signed, nil
}

// Keyfunc exige RS256 y, si viene kid, que coincida con el nuestro.
func (s *Signer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if t.Method == nil || t.Method.Alg() != Algorithm {
			return nil, fmt.Errorf("unexpected alg %v", t.Header["alg"])
		}
		if kid, ok := t.Header["kid"].(string); ok && kid != "" && kid != s.keys.KID {
			return nil, fmt.Errorf("unknown kid %q", kid)
		}
		return s.keys.PublicKey, nil
	}
}

// ParseInto parsea token en claims. Siempre fuerza RS256.
func (s *Signer) ParseInto(token string, claims jwtv5.Claims, opts ...jwtv5.ParserOption) (*jwtv5.Token, error) {
	opts = append(opts, jwtv5.WithValidMethods([]string{Algorithm}))
	return jwtv5.ParseWithClaims(token, claims, s.Keyfunc(), opts...)
}

// Verify valida firma, algoritmo y tiempos; cualquier fallo es ErrInvalidSignature.
func (s *Signer) Verify(token string) (jwtv5.MapClaims, error) {
	claims := jwtv5.MapClaims{}
	tk, err := s.ParseInto(token, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !tk.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}
