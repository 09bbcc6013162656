package errors

import (
	"encoding/json"
	"net/http"
)

// ProtocolError es un error OAuth2 (RFC 6749 §5.2). Se escribe tal cual:
// {error, error_description}, sin detalles internos.
type ProtocolError struct {
	Status      int
	Code        string
	Description string
}

func (e *ProtocolError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// Protocol crea un ProtocolError.
func Protocol(status int, code, description string) *ProtocolError {
	return &ProtocolError{Status: status, Code: code, Description: description}
}

// Códigos OAuth2.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidClient        = "invalid_client"
	CodeInvalidGrant         = "invalid_grant"
	CodeUnsupportedGrantType = "unsupported_grant_type"
	CodeUnsupportedRespType  = "unsupported_response_type"
	CodeUnauthorizedClient   = "unauthorized_client"
	CodeInvalidScope         = "invalid_scope"
	CodeForbidden            = "forbidden"
	CodeAccessDenied         = "access_denied"
	CodeInvalidToken         = "invalid_token"
	CodeServerError          = "server_error"
)

// WriteProtocolError escribe el error con headers no-store (RFC 6749 §5.1).
func WriteProtocolError(w http.ResponseWriter, e *ProtocolError) {
	status := e.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	body := map[string]string{"error": e.Code}
	if e.Description != "" {
		body["error_description"] = e.Description
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if e.Code == CodeInvalidToken {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
