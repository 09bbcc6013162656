// Package admin contiene los DTOs de la API de administración del tenant.
// Los secretos (clientSecret, key) sólo aparecen en la respuesta de creación
// o rotación; los listados nunca llevan hashes.
package admin

import (
	"time"

	"github.com/dropDatabas3/authflow/internal/store"
)

// ─── OAuth2 clients ───

type CreateClientRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=1000"`
	RedirectURIs []string `json:"redirectUris" validate:"required,min=1,max=20,dive,redirect_uri"`
	GrantTypes   []string `json:"grantTypes" validate:"omitempty,dive,oneof=authorization_code refresh_token"`
	Scopes       []string `json:"scopes" validate:"omitempty,max=20,dive,scope_name"`
}

type ClientResponse struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	TenantID     string    `json:"tenantId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	RedirectURIs []string  `json:"redirectUris"`
	GrantTypes   []string  `json:"grantTypes"`
	Scopes       []string  `json:"scopes"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ClientWithSecret es la respuesta de creación y rotación.
type ClientWithSecret struct {
	ClientResponse
	ClientSecret string `json:"clientSecret"`
}

// ClientFromStore sanitiza: el hash del secret nunca sale.
func ClientFromStore(c *store.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID,
		ClientID:     c.ClientID,
		TenantID:     c.TenantID,
		Name:         c.Name,
		Description:  c.Description,
		RedirectURIs: c.RedirectURIs,
		GrantTypes:   c.GrantTypes,
		Scopes:       c.Scopes,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
	}
}

// ─── API keys ───

type CreateAPIKeyRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Permissions []string   `json:"permissions" validate:"omitempty,dive,oneof=* api_keys:read api_keys:write oauth2_clients:read oauth2_clients:write"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

type APIKeyResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	KeyPrefix   string     `json:"keyPrefix"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"isActive"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	LastUsedAt  *time.Time `json:"lastUsedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// APIKeyCreated lleva la key en claro una sola vez.
type APIKeyCreated struct {
	APIKeyResponse
	Key string `json:"key"`
}

func APIKeyFromStore(k *store.APIKey) APIKeyResponse {
	perms := k.Permissions
	if perms == nil {
		perms = []string{}
	}
	return APIKeyResponse{
		ID:          k.ID,
		Name:        k.Name,
		KeyPrefix:   k.KeyPrefix,
		Permissions: perms,
		IsActive:    k.IsActive,
		ExpiresAt:   k.ExpiresAt,
		LastUsedAt:  k.LastUsedAt,
		CreatedAt:   k.CreatedAt,
	}
}

// MessageResponse es la respuesta de operaciones sin cuerpo propio.
type MessageResponse struct {
	Message string `json:"message"`
}
