package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"
)

// DefaultKeyBits es el tamaño de la llave de firma en producción.
const DefaultKeyBits = 4096

// Algorithm es el único algoritmo aceptado al firmar y al verificar.
const Algorithm = "RS256"

var (
	ErrNoKey         = errors.New("jwt: no signing key")
	ErrKeyTooSmall   = errors.New("jwt: rsa key too small")
	ErrKeyMismatch   = errors.New("jwt: public key does not match private key")
	ErrInvalidKeyPEM = errors.New("jwt: invalid key pem")
	ErrSealedKey     = errors.New("jwt: private key is sealed and cannot be opened with the configured master key")
)

// KeyPair es material de firma inmutable durante la vida del proceso.
// Se construye una vez (EnsureKeyPair) y se inyecta en Signer/SessionIssuer.
type KeyPair struct {
	KID        string
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
}

// NewKID genera el identificador "authflow-<unix_ms>".
func NewKID(now time.Time) string {
	return fmt.Sprintf("authflow-%d", now.UnixMilli())
}

// GenerateKeyPair crea un par RSA nuevo. Tests usan 2048 para no tardar.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits < 2048 {
		return nil, ErrKeyTooSmall
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return &KeyPair{KID: NewKID(time.Now()), PrivateKey: priv, PublicKey: &priv.PublicKey}, nil
}

func (k *KeyPair) validate() error {
	if k == nil || k.PrivateKey == nil || k.PublicKey == nil || k.KID == "" {
		return ErrNoKey
	}
	if k.PrivateKey.N.BitLen() < 2048 {
		return ErrKeyTooSmall
	}
	if !k.PrivateKey.PublicKey.Equal(k.PublicKey) {
		return ErrKeyMismatch
	}
	return nil
}
