package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidScopeName(t *testing.T) {
	valid := []string{"a", "openid", "profile:read", "email:read:e2e123", "a_b-c.d:scope2", strings.Repeat("a", 64)}
	invalid := []string{"", ":lead", "trail:", "bad space", "UPPER", "semicolon;hack", strings.Repeat("a", 65)}

	for _, v := range valid {
		assert.True(t, ValidScopeName(v), v)
	}
	for _, v := range invalid {
		assert.False(t, ValidScopeName(v), v)
	}
}

func TestValidRedirectURI(t *testing.T) {
	ok := []string{"https://app.example.com/cb", "http://localhost:3000/cb", "http://127.0.0.1/cb", "http://[::1]:8080/cb"}
	bad := []string{"", "/cb", "http://app.example.com/cb", "https://app.example.com/cb#frag", "javascript:alert(1)", "https:///nohost"}
	for _, u := range ok {
		assert.True(t, ValidRedirectURI(u), u)
	}
	for _, u := range bad {
		assert.False(t, ValidRedirectURI(u), u)
	}
}

func TestFirstInvalid(t *testing.T) {
	v, bad := FirstInvalid([]string{"openid", "BAD", "x;y"}, ValidScopeName)
	assert.True(t, bad)
	assert.Equal(t, "BAD", v)

	_, bad = FirstInvalid(nil, ValidScopeName)
	assert.False(t, bad)
}
