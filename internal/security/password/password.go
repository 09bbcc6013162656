// Package password implementa el hashing lento de contraseñas de usuario.
//
// Hash produce bcrypt. Verify acepta bcrypt y, por compatibilidad con
// importaciones previas, hashes argon2id en formato PHC.
package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost ronda los ~100ms por operación en hardware actual.
const DefaultCost = 10

var (
	ErrEmptyPassword = errors.New("empty password")
	ErrTooLong       = errors.New("password exceeds 72 bytes")
)

// Hasher encapsula el costo de bcrypt.
type Hasher struct {
	Cost int
}

// New devuelve un Hasher; costos fuera de rango caen en DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash devuelve un hash bcrypt salteado.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	if len(plain) > 72 {
		return "", ErrTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara plain contra hash. Nunca distingue "hash inválido" de "no coincide".
func (h *Hasher) Verify(plain, hash string) bool {
	return Verify(plain, hash)
}

// Hash con el costo por defecto.
func Hash(plain string) (string, error) {
	return New(DefaultCost).Hash(plain)
}

// Verify detecta el algoritmo por prefijo.
func Verify(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return verifyArgon2id(plain, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	default:
		return false
	}
}
