// Package config carga la configuración del servidor: YAML opcional,
// defaults y overrides por entorno (AUTHFLOW_*). El .env lo carga el CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/authflow/internal/security/secretbox"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env         string `yaml:"env"`
		ServiceName string `yaml:"service_name"`
		Version     string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownGrace   time.Duration `yaml:"shutdown_grace"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes"`
		TrustProxyHeads bool          `yaml:"trust_proxy_headers"`
	} `yaml:"server"`

	// Issuer es la URL pública base (iss de los JWT y endpoints de discovery).
	Issuer string `yaml:"issuer"`

	Keys struct {
		Dir  string `yaml:"dir"`
		Bits int    `yaml:"bits"`
		// MasterKey (base64 o hex, 32 bytes) sella private.pem en disco.
		MasterKey string `yaml:"master_key"`
	} `yaml:"keys"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int32         `yaml:"max_conns"`
			MinConns        int32         `yaml:"min_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		Migrate bool `yaml:"migrate"`
	} `yaml:"storage"`

	Cache struct {
		Driver   string `yaml:"driver"` // memory | redis
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"cache"`

	OAuth struct {
		AuthRequestTTL      time.Duration `yaml:"auth_request_ttl"`
		CodeTTL             time.Duration `yaml:"code_ttl"`
		AccessTTL           time.Duration `yaml:"access_ttl"`
		RefreshTTL          time.Duration `yaml:"refresh_ttl"`
		RotateRefreshTokens bool          `yaml:"rotate_refresh_tokens"`
		StoreTimeout        time.Duration `yaml:"store_timeout"`
		ConsentURL          string        `yaml:"consent_url"`
		LoginURL            string        `yaml:"login_url"`
	} `yaml:"oauth"`

	Auth struct {
		BcryptCost    int           `yaml:"bcrypt_cost"`
		SessionTTL    time.Duration `yaml:"session_ttl"`
		RefreshTTL    time.Duration `yaml:"refresh_ttl"`
		CookieName    string        `yaml:"cookie_name"`
		CookieSecure  bool          `yaml:"cookie_secure"`
		CookieDomain  string        `yaml:"cookie_domain"`
		TouchTimeout  time.Duration `yaml:"touch_timeout"`
		AllowBearerJW bool          `yaml:"allow_bearer_session"`
	} `yaml:"auth"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Token   struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"token"`
		Login struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Cleanup struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"cleanup"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default devuelve la configuración con todos los defaults aplicados.
func Default() *Config {
	var c Config
	c.App.Env = "dev"
	c.App.ServiceName = "authflow"
	c.App.Version = "dev"

	c.Server.Addr = ":8080"
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownGrace = 10 * time.Second
	c.Server.MaxBodyBytes = 1 << 20

	c.Issuer = "http://localhost:8080"
	c.Keys.Dir = "./data/keys"
	c.Keys.Bits = 4096

	c.Storage.Driver = "memory"
	c.Storage.Postgres.MaxConns = 20
	c.Storage.Postgres.MinConns = 2
	c.Storage.Postgres.ConnMaxLifetime = 30 * time.Minute

	c.Cache.Driver = "memory"
	c.Cache.Prefix = "authflow"

	c.OAuth.AuthRequestTTL = 10 * time.Minute
	c.OAuth.CodeTTL = 10 * time.Minute
	c.OAuth.AccessTTL = time.Hour
	c.OAuth.RefreshTTL = 30 * 24 * time.Hour
	c.OAuth.RotateRefreshTokens = true
	c.OAuth.StoreTimeout = 5 * time.Second
	c.OAuth.ConsentURL = "/oauth2/consent"
	c.OAuth.LoginURL = "/login"

	c.Auth.BcryptCost = 10
	c.Auth.SessionTTL = 7 * 24 * time.Hour
	c.Auth.RefreshTTL = 30 * 24 * time.Hour
	c.Auth.CookieName = "token"
	c.Auth.TouchTimeout = 2 * time.Second
	c.Auth.AllowBearerJW = true

	c.Rate.Enabled = true
	c.Rate.Token.Limit = 30
	c.Rate.Token.Window = time.Minute
	c.Rate.Login.Limit = 10
	c.Rate.Login.Window = time.Minute

	c.Cleanup.Enabled = true
	c.Cleanup.Interval = time.Hour

	c.Log.Level = "info"
	return &c
}

// Load lee path (si no está vacío) sobre los defaults, aplica overrides de
// entorno y valida.
func Load(path string) (*Config, error) {
	c := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	c.Issuer = strings.TrimRight(strings.TrimSpace(c.Issuer), "/")

	// Guardia dura: en prod la cookie de sesión siempre es Secure.
	if c.IsProd() {
		c.Auth.CookieSecure = true
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) IsProd() bool { return c.App.Env == "prod" }

// Validate falla rápido ante valores que romperían el arranque.
func (c *Config) Validate() error {
	var errs []error

	if c.Issuer == "" {
		errs = append(errs, errors.New("issuer is required"))
	} else if u, err := url.Parse(c.Issuer); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("issuer must be an absolute URL: %q", c.Issuer))
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown cache.driver %q", c.Cache.Driver))
	}

	if c.Keys.Bits < 2048 {
		errs = append(errs, fmt.Errorf("keys.bits must be >= 2048, got %d", c.Keys.Bits))
	}
	if strings.TrimSpace(c.Keys.Dir) == "" {
		errs = append(errs, errors.New("keys.dir is required"))
	}
	if c.Keys.MasterKey != "" {
		if _, err := secretbox.ParseKey(c.Keys.MasterKey); err != nil {
			errs = append(errs, fmt.Errorf("keys.master_key: %w", err))
		}
	}

	positive := map[string]time.Duration{
		"oauth.auth_request_ttl": c.OAuth.AuthRequestTTL,
		"oauth.code_ttl":         c.OAuth.CodeTTL,
		"oauth.access_ttl":       c.OAuth.AccessTTL,
		"oauth.refresh_ttl":      c.OAuth.RefreshTTL,
		"oauth.store_timeout":    c.OAuth.StoreTimeout,
		"auth.session_ttl":       c.Auth.SessionTTL,
		"auth.refresh_ttl":       c.Auth.RefreshTTL,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Cleanup.Enabled && c.Cleanup.Interval <= 0 {
		errs = append(errs, errors.New("cleanup.interval must be positive"))
	}
	if c.Rate.Enabled {
		if c.Rate.Token.Limit <= 0 || c.Rate.Token.Window <= 0 {
			errs = append(errs, errors.New("rate.token limit/window must be positive"))
		}
		if c.Rate.Login.Limit <= 0 || c.Rate.Login.Window <= 0 {
			errs = append(errs, errors.New("rate.login limit/window must be positive"))
		}
	}
	return errors.Join(errs...)
}
