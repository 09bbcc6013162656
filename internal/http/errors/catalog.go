package errors

import "net/http"

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// ---------------------------------------------------------------------------------
// 400
// ---------------------------------------------------------------------------------

var (
	ErrBadRequest       = New(http.StatusBadRequest, "invalid_request", "The request is missing a required parameter or is malformed")
	ErrInvalidJSON      = New(http.StatusBadRequest, "invalid_request", "Request body is not valid JSON")
	ErrValidation       = New(http.StatusBadRequest, "invalid_request", "Request validation failed")
	ErrBodyTooLarge     = New(http.StatusRequestEntityTooLarge, "invalid_request", "Request body too large")
	ErrInvalidClient    = New(http.StatusBadRequest, "invalid_client", "Client not found")
	ErrInvalidRedirect  = New(http.StatusBadRequest, "invalid_redirect_uri", "Redirect URI is no longer registered")
	ErrUnsupportedRespT = New(http.StatusBadRequest, "unsupported_response_type", "Only response_type=code is supported")
)

// ---------------------------------------------------------------------------------
// 401 / 403 / 404
// ---------------------------------------------------------------------------------

var (
	ErrUnauthorized       = New(http.StatusUnauthorized, "unauthorized", "Authentication required")
	ErrInvalidSession     = New(http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	ErrInvalidAPIKey      = New(http.StatusUnauthorized, "unauthorized", "Invalid API key")

	ErrForbidden         = New(http.StatusForbidden, "forbidden", "Insufficient permissions")
	ErrTenantMismatch    = New(http.StatusForbidden, "forbidden", "Client belongs to different tenant")
	ErrTenantRequired    = New(http.StatusForbidden, "forbidden", "Tenant ID required")
	ErrNotRequestOwner   = New(http.StatusForbidden, "forbidden", "Authorization request belongs to another user")
	ErrSessionRequired   = New(http.StatusForbidden, "forbidden", "This endpoint requires a user session")
	ErrNotFound          = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrAuthRequestAbsent = New(http.StatusNotFound, "not_found", "Authorization request not found or expired")
)

// ---------------------------------------------------------------------------------
// 405 / 429 / 5xx
// ---------------------------------------------------------------------------------

var (
	ErrMethodNotAllowed    = New(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	ErrTooManyRequests     = New(http.StatusTooManyRequests, "rate_limited", "Too many requests")
	ErrInternalServerError = New(http.StatusInternalServerError, "server_error", "An unexpected error occurred")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, "temporarily_unavailable", "Service unavailable")
)
