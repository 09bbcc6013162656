package oauth

// AuthRequestResponse es lo que la pantalla de consentimiento necesita mostrar.
type AuthRequestResponse struct {
	ClientID          string `json:"clientId"`
	ClientName        string `json:"clientName"`
	ClientDescription string `json:"clientDescription"`
	Scope             string `json:"scope"`
	RedirectURI       string `json:"redirectUri"`
}

// ConsentRequest es el body de POST /api/oauth2/consent.
type ConsentRequest struct {
	RequestID string `json:"request_id" validate:"required"`
	Approved  bool   `json:"approved"`
}

// ConsentResponse lleva la URL a la que el front debe navegar.
type ConsentResponse struct {
	RedirectURL string `json:"redirect_url"`
}
