package oauth

import (
	"net/http"
	"net/url"
	"strings"

	httperrors "github.com/dropDatabas3/authflow/internal/http/errors"
)

// Grant types soportados por /oauth2/token.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// ClientCredentials llega por form (client_secret_post) o por Basic.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	Basic        bool
}

// TokenRequest es la unión de los grants soportados.
// Sólo AuthorizationCodeGrant y RefreshTokenGrant la implementan.
type TokenRequest interface {
	GrantType() string
	Credentials() ClientCredentials
}

// AuthorizationCodeGrant: grant_type=authorization_code.
type AuthorizationCodeGrant struct {
	Client       ClientCredentials
	Code         string
	RedirectURI  string
	CodeVerifier string
}

func (AuthorizationCodeGrant) GrantType() string                { return GrantAuthorizationCode }
func (g AuthorizationCodeGrant) Credentials() ClientCredentials { return g.Client }

// RefreshTokenGrant: grant_type=refresh_token. Scope vacío = mismos scopes.
type RefreshTokenGrant struct {
	Client       ClientCredentials
	RefreshToken string
	Scope        string
}

func (RefreshTokenGrant) GrantType() string                { return GrantRefreshToken }
func (g RefreshTokenGrant) Credentials() ClientCredentials { return g.Client }

// TokenResponse es la respuesta estándar (RFC 6749 §5.1).
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope"`
}

var errMissingParams = httperrors.Protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "Missing required parameters")

// ParseTokenRequest arma el grant desde el form ya parseado y el header
// Authorization. Los errores devueltos son *httperrors.ProtocolError.
func ParseTokenRequest(r *http.Request) (TokenRequest, error) {
	form := r.PostForm
	grantType := strings.TrimSpace(form.Get("grant_type"))
	if grantType == "" {
		return nil, httperrors.Protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "grant_type required")
	}

	creds, err := clientCredentials(r, form)
	if err != nil {
		return nil, err
	}

	switch grantType {
	case GrantAuthorizationCode:
		g := AuthorizationCodeGrant{
			Client:       creds,
			Code:         strings.TrimSpace(form.Get("code")),
			RedirectURI:  form.Get("redirect_uri"),
			CodeVerifier: strings.TrimSpace(form.Get("code_verifier")),
		}
		if g.Code == "" || g.RedirectURI == "" || g.Client.ClientID == "" {
			return nil, errMissingParams
		}
		return g, nil

	case GrantRefreshToken:
		g := RefreshTokenGrant{
			Client:       creds,
			RefreshToken: strings.TrimSpace(form.Get("refresh_token")),
			Scope:        strings.TrimSpace(form.Get("scope")),
		}
		if g.RefreshToken == "" || g.Client.ClientID == "" || g.Client.ClientSecret == "" {
			return nil, errMissingParams
		}
		return g, nil

	default:
		return nil, httperrors.Protocol(http.StatusBadRequest, httperrors.CodeUnsupportedGrantType, "Grant type not supported")
	}
}

// clientCredentials: Basic tiene precedencia. Si además viene client_id en el
// form tiene que coincidir; un secret en ambos lados es un request inválido.
func clientCredentials(r *http.Request, form url.Values) (ClientCredentials, error) {
	formID := strings.TrimSpace(form.Get("client_id"))
	formSecret := form.Get("client_secret")

	user, pass, ok := r.BasicAuth()
	if !ok {
		return ClientCredentials{ClientID: formID, ClientSecret: formSecret}, nil
	}

	// RFC 6749 §2.3.1: las credenciales Basic van form-urlencoded.
	id, err1 := url.QueryUnescape(user)
	secret, err2 := url.QueryUnescape(pass)
	if err1 != nil || err2 != nil || id == "" {
		return ClientCredentials{}, httperrors.Protocol(http.StatusBadRequest, httperrors.CodeInvalidClient, "Client authentication failed")
	}
	if formSecret != "" || (formID != "" && formID != id) {
		return ClientCredentials{}, httperrors.Protocol(http.StatusBadRequest, httperrors.CodeInvalidRequest, "Multiple client authentication methods")
	}
	return ClientCredentials{ClientID: id, ClientSecret: secret, Basic: true}, nil
}
