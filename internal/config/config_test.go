package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, time.Hour, c.OAuth.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, c.OAuth.RefreshTTL)
	assert.Equal(t, 10*time.Minute, c.OAuth.CodeTTL)
	assert.True(t, c.OAuth.RotateRefreshTokens)
	assert.Equal(t, 4096, c.Keys.Bits)
	assert.Equal(t, "token", c.Auth.CookieName)
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	p := writeYAML(t, `
app:
  env: PROD
issuer: https://auth.example.com/
storage:
  driver: postgres
  dsn: postgres://localhost/authflow
oauth:
  access_ttl: 15m
  rotate_refresh_tokens: true
`)
	t.Setenv("AUTHFLOW_OAUTH_ROTATE_REFRESH_TOKENS", "false")
	t.Setenv("AUTHFLOW_CACHE_DRIVER", "redis")
	t.Setenv("AUTHFLOW_REDIS_ADDR", "redis:6379")

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "prod", c.App.Env)
	assert.Equal(t, "https://auth.example.com", c.Issuer)
	assert.Equal(t, 15*time.Minute, c.OAuth.AccessTTL)
	assert.False(t, c.OAuth.RotateRefreshTokens)
	assert.Equal(t, "redis", c.Cache.Driver)
	assert.Equal(t, "redis:6379", c.Cache.Addr)
	assert.True(t, c.Auth.CookieSecure, "prod fuerza cookie Secure")
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("AUTHFLOW_OAUTH_ACCESS_TTL", "una hora")
	_, err := Load("")
	assert.ErrorContains(t, err, "AUTHFLOW_OAUTH_ACCESS_TTL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.dsn"},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "mongo" }, "unknown storage.driver"},
		{"unknown cache", func(c *Config) { c.Cache.Driver = "memcached" }, "unknown cache.driver"},
		{"relative issuer", func(c *Config) { c.Issuer = "/auth" }, "absolute URL"},
		{"zero access ttl", func(c *Config) { c.OAuth.AccessTTL = 0 }, "oauth.access_ttl"},
		{"small key", func(c *Config) { c.Keys.Bits = 1024 }, "keys.bits"},
		{"bad master key", func(c *Config) { c.Keys.MasterKey = "too-short" }, "keys.master_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}
