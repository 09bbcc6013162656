// Package oauth contiene los DTOs de los endpoints OAuth2.
package oauth

import (
	"net/url"
	"strings"
)

// DefaultScope se usa cuando el authorize no trae scope.
const DefaultScope = "openid profile email"

// AuthorizeRequest son los parámetros de GET /oauth2/authorize.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizeRequestFromQuery lee los parámetros del query string.
// redirect_uri y state no se recortan: se comparan/devuelven tal cual.
func AuthorizeRequestFromQuery(q url.Values) AuthorizeRequest {
	return AuthorizeRequest{
		ResponseType:        strings.TrimSpace(q.Get("response_type")),
		ClientID:            strings.TrimSpace(q.Get("client_id")),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               strings.TrimSpace(q.Get("scope")),
		State:               q.Get("state"),
		CodeChallenge:       strings.TrimSpace(q.Get("code_challenge")),
		CodeChallengeMethod: strings.TrimSpace(q.Get("code_challenge_method")),
	}
}
