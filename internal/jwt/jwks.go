package jwt

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// PublicJWK exporta la llave pública (n, e) con kid/alg/use. Nunca la privada.
func (k *KeyPair) PublicJWK() (jwk.Key, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	key, err := jwk.FromRaw(k.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("jwk from public key: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, k.KID); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, err
	}
	return key, nil
}

// JWKS es un export memoizado: el par no cambia durante el proceso.
type JWKS struct {
	keys *KeyPair

	once sync.Once
	data []byte
	err  error
}

// NewJWKS arma el export para kp.
func NewJWKS(kp *KeyPair) *JWKS {
	return &JWKS{keys: kp}
}

// JSON devuelve {"keys":[{kty,use,alg,kid,n,e}]}.
func (j *JWKS) JSON() ([]byte, error) {
	j.once.Do(func() {
		key, err := j.keys.PublicJWK()
		if err != nil {
			j.err = err
			return
		}
		set := jwk.NewSet()
		if err := set.AddKey(key); err != nil {
			j.err = err
			return
		}
		j.data, j.err = json.Marshal(set)
	})
	return j.data, j.err
}
