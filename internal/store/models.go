package store

import (
	"slices"
	"time"
)

// Roles de usuario.
const (
	RoleUser        = "user"
	RoleTenantAdmin = "tenant_admin"
	RoleSuperAdmin  = "super_admin"
)

// WildcardPermission habilita a una API key en cualquier ruta que la admita.
const WildcardPermission = "*"

// User es la vista mínima del usuario que necesita el core (CRUD fuera de alcance).
type User struct {
	ID            string
	TenantID      string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	PasswordHash  string
	Role          string
	IsActive      bool
	CreatedAt     time.Time
}

// Client es una aplicación OAuth2 registrada por un tenant.
type Client struct {
	ID               string
	TenantID         string
	ClientID         string // público
	ClientSecretHash string // sha256 hex
	Name             string
	Description      string
	RedirectURIs     []string
	GrantTypes       []string
	ResponseTypes    []string
	Scopes           []string
	IsActive         bool
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasRedirectURI compara byte a byte: sin prefijos ni comodines.
func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// AllowsGrant: lista vacía = defaults (authorization_code + refresh_token).
func (c *Client) AllowsGrant(gt string) bool {
	if len(c.GrantTypes) == 0 {
		return gt == "authorization_code" || gt == "refresh_token"
	}
	return slices.Contains(c.GrantTypes, gt)
}

// AuthorizationCode es de un solo uso y vive 10 minutos.
type AuthorizationCode struct {
	ID                  string
	CodeHash            string
	ClientID            string
	UserID              string
	TenantID            string
	RedirectURI         string
	Scopes              []string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time
	CreatedAt           time.Time
}

// AccessToken opaco; sólo se guarda el hash.
type AccessToken struct {
	ID        string
	TokenHash string
	ClientID  string
	UserID    string
	TenantID  string
	Scopes    []string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshToken opaco. AccessTokenID es una referencia débil (sin FK de ownership).
type RefreshToken struct {
	ID            string
	TokenHash     string
	AccessTokenID string
	ClientID      string
	UserID        string
	TenantID      string
	Scopes        []string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Session es un login first-party (no OAuth2).
type Session struct {
	ID               string
	UserID           string
	TenantID         string
	Token            string
	RefreshTokenHash string
	IPAddress        string
	UserAgent        string
	ExpiresAt        time.Time
	IsActive         bool
	CreatedAt        time.Time
}

// APIKey es un principal no interactivo con permisos explícitos.
type APIKey struct {
	ID          string
	TenantID    string
	Name        string
	KeyHash     string
	KeyPrefix   string
	Permissions []string
	IsActive    bool
	ExpiresAt   *time.Time
	LastUsedAt  *time.Time
	CreatedBy   string
	CreatedAt   time.Time
}

// Usable: activa y no vencida en now.
func (k *APIKey) Usable(now time.Time) bool {
	return k.IsActive && (k.ExpiresAt == nil || now.Before(*k.ExpiresAt))
}

// PurgeResult cuenta filas borradas por PurgeExpired.
type PurgeResult struct {
	Codes         int64
	AccessTokens  int64
	RefreshTokens int64
	Sessions      int64
}

// Total suma todas las filas purgadas.
func (p PurgeResult) Total() int64 {
	return p.Codes + p.AccessTokens + p.RefreshTokens + p.Sessions
}
