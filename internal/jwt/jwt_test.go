package jwt_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/security/secretbox"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	testKeyOnce sync.Once
	testKey     *jwtx.KeyPair
)

// sharedKey genera una sola llave 2048 por corrida; 4096 es lento para tests.
func sharedKey(t *testing.T) *jwtx.KeyPair {
	t.Helper()
	testKeyOnce.Do(func() {
		kp, err := jwtx.GenerateKeyPair(2048)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		kp.KID = "test-kid"
		testKey = kp
	})
	return testKey
}

func newSigner(t *testing.T) *jwtx.Signer {
	t.Helper()
	s, err := jwtx.NewSigner(sharedKey(t))
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return s
}

func TestEnsureKeyPair_IdempotentAndOwnerOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")

	kp1, err := jwtx.EnsureKeyPair(dir, 2048)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if !strings.HasPrefix(kp1.KID, "authflow-") {
		t.Fatalf("unexpected kid %q", kp1.KID)
	}

	st, err := os.Stat(filepath.Join(dir, "private.pem"))
	if err != nil {
		t.Fatalf("stat private: %v", err)
	}
	if perm := st.Mode().Perm(); perm != 0o600 {
		t.Fatalf("private.pem perm=%o want 600", perm)
	}
	if _, err := os.Stat(filepath.Join(dir, "public.pem")); err != nil {
		t.Fatalf("public.pem missing: %v", err)
	}

	kp2, err := jwtx.EnsureKeyPair(dir, 2048)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if kp1.KID != kp2.KID {
		t.Fatalf("kid changed across loads: %q vs %q", kp1.KID, kp2.KID)
	}
	if !kp1.PrivateKey.Equal(kp2.PrivateKey) {
		t.Fatal("private key changed across loads")
	}
}

func TestEnsureKeyPair_RejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "private.pem"), []byte("not a pem"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := jwtx.EnsureKeyPair(dir, 2048); !errors.Is(err, jwtx.ErrInvalidKeyPEM) {
		t.Fatalf("want ErrInvalidKeyPEM, got %v", err)
	}
}

func TestFileKeyStore_SealedPrivateKey(t *testing.T) {
	dir := t.TempDir()
	mk, err := secretbox.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	box, err := secretbox.FromString(mk)
	if err != nil {
		t.Fatal(err)
	}

	ks := jwtx.NewFileKeyStore(dir, 2048)
	ks.Box = box
	kp := sharedKey(t)
	if err := ks.Save(kp); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "private.pem"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "SEALED PRIVATE KEY") {
		t.Fatalf("private.pem is not sealed:\n%s", raw)
	}

	got, err := ks.Load()
	if err != nil {
		t.Fatalf("load sealed: %v", err)
	}
	if !got.PrivateKey.Equal(kp.PrivateKey) || got.KID != kp.KID {
		t.Fatal("sealed key did not round-trip")
	}

	if _, err := jwtx.NewFileKeyStore(dir, 2048).Load(); !errors.Is(err, jwtx.ErrSealedKey) {
		t.Fatalf("load without box: want ErrSealedKey, got %v", err)
	}

	other, _ := secretbox.GenerateKey()
	wrong, err := secretbox.FromString(other)
	if err != nil {
		t.Fatal(err)
	}
	ks2 := jwtx.NewFileKeyStore(dir, 2048)
	ks2.Box = wrong
	if _, err := ks2.Load(); !errors.Is(err, jwtx.ErrSealedKey) {
		t.Fatalf("load with wrong key: want ErrSealedKey, got %v", err)
	}
}

func TestGenerateKeyPair_TooSmall(t *testing.T) {
	if _, err := jwtx.GenerateKeyPair(1024); !errors.Is(err, jwtx.ErrKeyTooSmall) {
		t.Fatalf("want ErrKeyTooSmall, got %v", err)
	}
}

func TestSignVerify_KIDAndAlgorithm(t *testing.T) {
	s := newSigner(t)
	tok, err := s.Sign(jwtv5.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Minute).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, _, err := jwtv5.NewParser().ParseUnverified(tok, jwtv5.MapClaims{})
	if err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if parsed.Header["kid"] != "test-kid" || parsed.Header["alg"] != "RS256" {
		t.Fatalf("unexpected header %v", parsed.Header)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims["sub"] != "u1" {
		t.Fatalf("sub=%v", claims["sub"])
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	s := newSigner(t)

	// HS256 firmado con el módulo público como secreto: clásico algorithm confusion.
	hs := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{"sub": "u1"})
	hs.Header["kid"] = s.KID()
	forged, err := hs.SignedString(sharedKey(t).PublicKey.N.Bytes())
	if err != nil {
		t.Fatalf("sign hs256: %v", err)
	}
	if _, err := s.Verify(forged); !errors.Is(err, jwtx.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for HS256, got %v", err)
	}

	none, _ := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{"sub": "u1"}).
		SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	if _, err := s.Verify(none); !errors.Is(err, jwtx.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for none, got %v", err)
	}
}

func TestVerify_OtherKeyAndExpired(t *testing.T) {
	s := newSigner(t)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, jwtv5.MapClaims{"sub": "u1"})
	tk.Header["kid"] = s.KID()
	bad, _ := tk.SignedString(other)
	if _, err := s.Verify(bad); !errors.Is(err, jwtx.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for foreign key, got %v", err)
	}

	expired, _ := s.Sign(jwtv5.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()})
	_, err = s.Verify(expired)
	if !errors.Is(err, jwtx.ErrInvalidSignature) || !errors.Is(err, jwtv5.ErrTokenExpired) {
		t.Fatalf("want ErrInvalidSignature wrapping ErrTokenExpired, got %v", err)
	}
}

func TestJWKS_PublicOnly(t *testing.T) {
	kp := sharedKey(t)
	raw, err := jwtx.NewJWKS(kp).JSON()
	if err != nil {
		t.Fatalf("jwks: %v", err)
	}

	var doc struct {
		Keys []map[string]any `json:"keys"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Keys) != 1 {
		t.Fatalf("want 1 key, got %d", len(doc.Keys))
	}
	k := doc.Keys[0]
	for field, want := range map[string]string{"kty": "RSA", "use": "sig", "alg": "RS256", "kid": "test-kid"} {
		if k[field] != want {
			t.Fatalf("%s=%v want %s", field, k[field], want)
		}
	}
	for _, private := range []string{"d", "p", "q", "dp", "dq", "qi"} {
		if _, ok := k[private]; ok {
			t.Fatalf("private parameter %q leaked in JWKS", private)
		}
	}

	n, err := base64.RawURLEncoding.DecodeString(k["n"].(string))
	if err != nil {
		t.Fatalf("decode n: %v", err)
	}
	if new(big.Int).SetBytes(n).Cmp(kp.PublicKey.N) != 0 {
		t.Fatal("modulus mismatch")
	}
}

func TestSessionIssuer_RoundTrip(t *testing.T) {
	iss := jwtx.NewSessionIssuer("https://auth.example", newSigner(t))

	tok, exp, err := iss.IssueSession("user-1", "a@b.c", "tenant_admin", "tenant-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if d := time.Until(exp); d < 7*24*time.Hour-time.Minute || d > 7*24*time.Hour {
		t.Fatalf("unexpected session ttl %v", d)
	}

	c, err := iss.Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.UserID != "user-1" || c.Email != "a@b.c" || c.Role != "tenant_admin" || c.TenantID != "tenant-1" {
		t.Fatalf("unexpected claims %+v", c)
	}
}

func TestSessionIssuer_OmitsEmptyTenant(t *testing.T) {
	s := newSigner(t)
	iss := jwtx.NewSessionIssuer("https://auth.example", s)
	tok, _, err := iss.IssueSession("root", "r@x.y", "super_admin", "")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := claims["tenantId"]; ok {
		t.Fatal("tenantId must be omitted when empty")
	}
}

func TestSessionIssuer_ErrorKinds(t *testing.T) {
	s := newSigner(t)
	iss := jwtx.NewSessionIssuer("https://auth.example", s)

	past := time.Now().Add(-8 * 24 * time.Hour)
	old := jwtx.NewSessionIssuer("https://auth.example", s).WithClock(func() time.Time { return past })
	expired, _, err := old.IssueSession("u", "e", "user", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Decode(expired); !errors.Is(err, jwtx.ErrExpiredToken) {
		t.Fatalf("want ErrExpiredToken, got %v", err)
	}

	if _, err := iss.Decode("not.a.jwt"); !errors.Is(err, jwtx.ErrMalformedToken) {
		t.Fatalf("want ErrMalformedToken, got %v", err)
	}
	if _, err := iss.Decode("garbage"); !errors.Is(err, jwtx.ErrMalformedToken) {
		t.Fatalf("want ErrMalformedToken, got %v", err)
	}

	good, _, _ := iss.IssueSession("u", "e", "user", "")
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := iss.Decode(tampered); !errors.Is(err, jwtx.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}

	otherIss := jwtx.NewSessionIssuer("https://evil.example", s)
	foreign, _, _ := otherIss.IssueSession("u", "e", "user", "")
	if _, err := iss.Decode(foreign); !errors.Is(err, jwtx.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for wrong issuer, got %v", err)
	}

	// sin exp: claim requerido ausente
	noExp, _ := s.Sign(jwtv5.MapClaims{"sub": "u", "userId": "u", "iss": "https://auth.example"})
	if _, err := iss.Decode(noExp); !errors.Is(err, jwtx.ErrMalformedToken) {
		t.Fatalf("want ErrMalformedToken without exp, got %v", err)
	}
}

func TestSessionIssuer_Refresh(t *testing.T) {
	iss := jwtx.NewSessionIssuer("https://auth.example", newSigner(t))
	a, exp, err := iss.IssueRefresh()
	if err != nil {
		t.Fatal(err)
	}
	b, _, _ := iss.IssueRefresh()
	if len(a) != 64 || a == b {
		t.Fatalf("unexpected refresh tokens %q %q", a, b)
	}
	if d := time.Until(exp); d < 29*24*time.Hour {
		t.Fatalf("refresh ttl too short: %v", d)
	}
}
