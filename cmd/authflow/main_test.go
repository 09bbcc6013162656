package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authflow/internal/security/password"
	tokens "github.com/dropDatabas3/authflow/internal/security/token"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	require.NoError(t, cmd.Execute())
	return strings.TrimSpace(out.String())
}

func TestHashPassword(t *testing.T) {
	hash := run(t, "s3cret\n", "hash-password", "--cost", "4")
	assert.True(t, password.Verify("s3cret", hash))

	argon := run(t, "", "hash-password", "--algo", "argon2id", "--password", "s3cret")
	assert.True(t, strings.HasPrefix(argon, "$argon2id$"))
	assert.True(t, password.Verify("s3cret", argon))
}

func TestWebhookSign(t *testing.T) {
	secret := run(t, "", "webhook", "secret")
	assert.Len(t, secret, 64)

	out := run(t, "", "webhook", "sign", "--secret", secret, "--body", `{"a":1}`, "--timestamp", "1700000000000")
	want := tokens.SignPayload(secret, "1700000000000", []byte(`{"a":1}`))
	assert.Contains(t, out, "X-Timestamp: 1700000000000")
	assert.Contains(t, out, "X-Signature: "+want)
}

func TestKeysEnsureAndJWKS(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTHFLOW_KEYS_DIR", dir)
	t.Setenv("AUTHFLOW_KEYS_BITS", "2048")

	kid := run(t, "", "keys", "ensure")
	require.NotEmpty(t, kid)
	assert.Equal(t, kid, run(t, "", "keys", "ensure"))

	jwks := run(t, "", "keys", "jwks")
	assert.Contains(t, jwks, kid)
	assert.Contains(t, jwks, `"alg":"RS256"`)
}

func TestKeysSealedWithMasterKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTHFLOW_KEYS_DIR", dir)
	t.Setenv("AUTHFLOW_KEYS_BITS", "2048")
	t.Setenv("AUTHFLOW_KEYS_MASTER_KEY", run(t, "", "keys", "master-key"))

	kid := run(t, "", "keys", "ensure")
	raw, err := os.ReadFile(filepath.Join(dir, "private.pem"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "SEALED PRIVATE KEY")
	assert.Contains(t, run(t, "", "keys", "jwks"), kid)
}
