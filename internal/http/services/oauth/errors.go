// Package oauth contiene los services del dominio OAuth2: authorize,
// consentimiento y token endpoint.
package oauth

import "errors"

// Errores de authorize / consent.
var (
	ErrMissingParams           = errors.New("missing required parameters")
	ErrUnsupportedResponseType = errors.New("unsupported response_type")
	ErrInvalidPKCEParams       = errors.New("invalid code_challenge parameters")
	ErrInvalidScope            = errors.New("invalid scope")
	ErrClientNotFound          = errors.New("client not found")
	ErrClientTenant            = errors.New("client belongs to different tenant")
	ErrRedirectNotRegistered   = errors.New("redirect_uri not registered")
	ErrUnauthorizedClient      = errors.New("client not allowed to use grant")
	ErrRequestNotFound         = errors.New("authorization request not found or expired")
	ErrNotRequestOwner         = errors.New("authorization request belongs to another user")
	ErrClientRemoved           = errors.New("client no longer exists")
	ErrRedirectRevoked         = errors.New("redirect_uri no longer registered")
)

// Errores del token endpoint.
var (
	ErrClientAuth          = errors.New("client authentication failed")
	ErrInvalidGrant        = errors.New("invalid or expired grant")
	ErrRedirectURIMismatch = errors.New("redirect_uri mismatch")
	ErrVerifierRequired    = errors.New("code_verifier required")
	ErrPKCEFailed          = errors.New("pkce validation failed")
)
