// Package auth contiene los DTOs del login first-party (sesiones propias,
// distintas de los tokens OAuth2).
package auth

import (
	"time"

	"github.com/dropDatabas3/authflow/internal/store"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
	TenantID string `json:"tenantId" validate:"omitempty,max=64"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserView es el usuario sin hash de contraseña.
type UserView struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Role          string    `json:"role"`
	TenantID      string    `json:"tenantId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func UserFromStore(u *store.User) UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		TenantID:      u.TenantID,
		CreatedAt:     u.CreatedAt,
	}
}

type LoginResponse struct {
	User         UserView  `json:"user"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expiresAt"`
	RefreshToken string    `json:"refreshToken"`
	RefreshExp   time.Time `json:"refreshExpiresAt"`
}

type RefreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MeResponse struct {
	User UserView `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
