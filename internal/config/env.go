package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "AUTHFLOW_"

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(envPrefix + key)
	return v, v != ""
}

// Los parsers devuelven error en vez de ignorar valores inválidos: un
// override mal escrito no debe pasar desapercibido.
func getEnvInt(key string) (int, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return i, true, nil
}

func getEnvBool(key string) (bool, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return b, true, nil
}

func getEnvDur(key string) (time.Duration, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return d, true, nil
}

// applyEnvOverrides pisa el YAML con AUTHFLOW_*.
func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"APP_ENV":           &c.App.Env,
		"APP_VERSION":       &c.App.Version,
		"SERVER_ADDR":       &c.Server.Addr,
		"ISSUER":            &c.Issuer,
		"KEYS_DIR":          &c.Keys.Dir,
		"KEYS_MASTER_KEY":   &c.Keys.MasterKey,
		"STORAGE_DRIVER":    &c.Storage.Driver,
		"STORAGE_DSN":       &c.Storage.DSN,
		"CACHE_DRIVER":      &c.Cache.Driver,
		"REDIS_ADDR":        &c.Cache.Addr,
		"REDIS_PASSWORD":    &c.Cache.Password,
		"CACHE_PREFIX":      &c.Cache.Prefix,
		"OAUTH_CONSENT_URL": &c.OAuth.ConsentURL,
		"OAUTH_LOGIN_URL":   &c.OAuth.LoginURL,
		"AUTH_COOKIE_NAME":  &c.Auth.CookieName,
		"LOG_LEVEL":         &c.Log.Level,
	}
	for k, dst := range strs {
		if v, ok := getEnvStr(k); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"KEYS_BITS":        &c.Keys.Bits,
		"REDIS_DB":         &c.Cache.DB,
		"AUTH_BCRYPT_COST": &c.Auth.BcryptCost,
		"RATE_TOKEN_LIMIT": &c.Rate.Token.Limit,
		"RATE_LOGIN_LIMIT": &c.Rate.Login.Limit,
	}
	for k, dst := range ints {
		v, ok, err := getEnvInt(k)
		if err != nil {
			return err
		}
		if ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"STORAGE_MIGRATE":             &c.Storage.Migrate,
		"OAUTH_ROTATE_REFRESH_TOKENS": &c.OAuth.RotateRefreshTokens,
		"AUTH_COOKIE_SECURE":          &c.Auth.CookieSecure,
		"RATE_ENABLED":                &c.Rate.Enabled,
		"CLEANUP_ENABLED":             &c.Cleanup.Enabled,
		"SERVER_TRUST_PROXY_HEADERS":  &c.Server.TrustProxyHeads,
	}
	for k, dst := range bools {
		v, ok, err := getEnvBool(k)
		if err != nil {
			return err
		}
		if ok {
			*dst = v
		}
	}

	durs := map[string]*time.Duration{
		"OAUTH_ACCESS_TTL":    &c.OAuth.AccessTTL,
		"OAUTH_REFRESH_TTL":   &c.OAuth.RefreshTTL,
		"OAUTH_CODE_TTL":      &c.OAuth.CodeTTL,
		"OAUTH_STORE_TIMEOUT": &c.OAuth.StoreTimeout,
		"AUTH_SESSION_TTL":    &c.Auth.SessionTTL,
		"CLEANUP_INTERVAL":    &c.Cleanup.Interval,
		"RATE_TOKEN_WINDOW":   &c.Rate.Token.Window,
		"RATE_LOGIN_WINDOW":   &c.Rate.Login.Window,
	}
	for k, dst := range durs {
		v, ok, err := getEnvDur(k)
		if err != nil {
			return err
		}
		if ok {
			*dst = v
		}
	}

	if v, ok, err := getEnvInt("PG_MAX_CONNS"); err != nil {
		return err
	} else if ok {
		c.Storage.Postgres.MaxConns = int32(v)
	}
	return nil
}
