package jwt

import (
	"errors"
	"fmt"
	"time"

	tokens "github.com/dropDatabas3/authflow/internal/security/token"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

var (
	ErrInvalidToken   = errors.New("invalid_token")
	ErrExpiredToken   = errors.New("expired_token")
	ErrMalformedToken = errors.New("malformed_token")
)

// SessionClaims es el payload del JWT de sesión first-party.
type SessionClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId,omitempty"`
	jwtv5.RegisteredClaims
}

// SessionIssuer emite y decodifica sesiones first-party (distintas de OAuth2).
type SessionIssuer struct {
	Iss        string
	SessionTTL time.Duration
	RefreshTTL time.Duration

	signer *Signer
	now    func() time.Time
}

// NewSessionIssuer usa los TTL por defecto (7d sesión, 30d refresh).
func NewSessionIssuer(iss string, s *Signer) *SessionIssuer {
	return &SessionIssuer{
		Iss:        iss,
		SessionTTL: DefaultSessionTTL,
		RefreshTTL: DefaultRefreshTTL,
		signer:     s,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (i *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	i.now = now
	return i
}

// IssueSession firma un JWT de sesión. tenantID vacío se omite del payload.
func (i *SessionIssuer) IssueSession(userID, email, role, tenantID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("issue session: %w", ErrMalformedToken)
	}
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.SessionTTL)
	claims := SessionClaims{
		UserID:   userID,
		Email:    email,
		Role:     role,
		TenantID: tenantID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh genera el refresh opaco de la sesión (32 bytes hex).
// El llamador persiste sólo tokens.HashSecret(token).
func (i *SessionIssuer) IssueRefresh() (string, time.Time, error) {
	tok, err := tokens.GenerateOpaqueHex(32)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, i.now().UTC().Add(i.RefreshTTL), nil
}

// Decode verifica y devuelve los claims.
//
//	ErrMalformedToken: estructura, base64/JSON o claims requeridos ausentes
//	ErrExpiredToken:   exp vencido (firma válida)
//	ErrInvalidToken:   firma, algoritmo, kid o issuer
func (i *SessionIssuer) Decode(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := i.signer.ParseInto(token, claims,
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenMalformed), errors.Is(err, jwtv5.ErrTokenRequiredClaimMissing):
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		case errors.Is(err, jwtv5.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
