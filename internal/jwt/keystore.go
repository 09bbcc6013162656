package jwt

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dropDatabas3/authflow/internal/observability/logger"
	"github.com/dropDatabas3/authflow/internal/security/secretbox"
	"github.com/dropDatabas3/authflow/internal/util/atomicwrite"
)

// Layout en disco:
//
//	<dir>/private.pem  PKCS#8, 0600 (SEALED PRIVATE KEY si hay Box)
//	<dir>/public.pem   PKIX, 0644
//	<dir>/kid.txt      0600
const (
	sealedBlockType = "SEALED PRIVATE KEY"

	privateFile = "private.pem"
	publicFile  = "public.pem"
	kidFile     = "kid.txt"
)

// FileKeyStore persiste un único par RSA en un directorio local.
type FileKeyStore struct {
	Dir  string
	Bits int
	// Box, si no es nil, sella la privada en disco con la clave maestra.
	Box *secretbox.Box
	now func() time.Time
}

// NewFileKeyStore crea el store; bits<=0 usa DefaultKeyBits.
func NewFileKeyStore(dir string, bits int) *FileKeyStore {
	if bits <= 0 {
		bits = DefaultKeyBits
	}
	return &FileKeyStore{Dir: filepath.Clean(dir), Bits: bits, now: time.Now}
}

// EnsureKeyPair carga el par existente o lo genera y persiste con permisos de dueño.
// Idempotente: la segunda llamada devuelve la misma llave y el mismo kid.
func EnsureKeyPair(dir string, bits int) (*KeyPair, error) {
	return NewFileKeyStore(dir, bits).Ensure()
}

// Ensure implementa EnsureKeyPair.
func (s *FileKeyStore) Ensure() (*KeyPair, error) {
	log := logger.L().With(logger.Component("keystore"))

	kp, err := s.Load()
	switch {
	case err == nil:
		log.Debug("signing key loaded", logger.KID(kp.KID))
		return kp, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create keys dir: %w", err)
	}
	kp, err = GenerateKeyPair(s.Bits)
	if err != nil {
		return nil, err
	}
	kp.KID = NewKID(s.now())
	if err := s.Save(kp); err != nil {
		return nil, err
	}
	log.Info("signing key generated", logger.KID(kp.KID), logger.Int("bits", s.Bits))
	return kp, nil
}

// Load lee el par desde disco. Devuelve fs.ErrNotExist si no hay llave privada.
func (s *FileKeyStore) Load() (*KeyPair, error) {
	privPEM, err := os.ReadFile(filepath.Join(s.Dir, privateFile))
	if err != nil {
		return nil, err
	}
	privPEM, err = s.unseal(privPEM)
	if err != nil {
		return nil, err
	}
	priv, err := ParsePrivateKeyPEM(privPEM)
	if err != nil {
		return nil, err
	}

	kid := ""
	if b, err := os.ReadFile(filepath.Join(s.Dir, kidFile)); err == nil {
		kid = strings.TrimSpace(string(b))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read kid: %w", err)
	}

	kp := &KeyPair{KID: kid, PrivateKey: priv, PublicKey: &priv.PublicKey}
	if kid == "" {
		// llave sin kid (copiada a mano): asignamos uno y lo persistimos
		kp.KID = NewKID(s.now())
		if err := atomicwrite.WriteFile(filepath.Join(s.Dir, kidFile), []byte(kp.KID+"\n"), 0o600); err != nil {
			return nil, err
		}
	}
	if err := kp.validate(); err != nil {
		return nil, err
	}
	return kp, nil
}

// Save escribe los tres archivos. La privada siempre queda 0600.
func (s *FileKeyStore) Save(kp *KeyPair) error {
	if err := kp.validate(); err != nil {
		return err
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(kp.PrivateKey)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(kp.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}

	// kid y pública primero: la privada marca "llave presente" para Load.
	if err := atomicwrite.WriteFile(filepath.Join(s.Dir, kidFile), []byte(kp.KID+"\n"), 0o600); err != nil {
		return err
	}
	if err := atomicwrite.WriteFile(filepath.Join(s.Dir, publicFile), pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o644); err != nil {
		return err
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: privDER}
	if s.Box != nil {
		sealed, err := s.Box.Seal(pem.EncodeToMemory(block), nil)
		if err != nil {
			return fmt.Errorf("seal private key: %w", err)
		}
		block = &pem.Block{Type: sealedBlockType, Bytes: sealed}
	}
	return atomicwrite.WriteFile(filepath.Join(s.Dir, privateFile), pem.EncodeToMemory(block), 0o600)
}

// unseal devuelve el PEM en claro. Un archivo en claro se acepta aun con
// Box configurado; uno sellado sin Box es ErrSealedKey.
func (s *FileKeyStore) unseal(b []byte) ([]byte, error) {
	block, _ := pem.Decode(b)
	if block == nil || block.Type != sealedBlockType {
		return b, nil
	}
	if s.Box == nil {
		return nil, ErrSealedKey
	}
	plain, err := s.Box.Open(block.Bytes, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedKey, err)
	}
	return plain, nil
}

// ParsePrivateKeyPEM acepta PKCS#8 ("PRIVATE KEY") y PKCS#1 ("RSA PRIVATE KEY").
func ParsePrivateKeyPEM(b []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, ErrInvalidKeyPEM
	}
	switch block.Type {
	case "PRIVATE KEY":
		k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyPEM, err)
		}
		rk, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an rsa key", ErrInvalidKeyPEM)
		}
		return rk, nil
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyPEM, err)
		}
		return k, nil
	default:
		return nil, fmt.Errorf("%w: unexpected block %q", ErrInvalidKeyPEM, block.Type)
	}
}
