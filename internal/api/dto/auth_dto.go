package dto

import (
	"time"

	"github.com/spec-kit/taskboard-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest payload for the OTP check.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// UserProfile is the outward-facing view of an account. The password hash and
// OTP state never leave the service.
type UserProfile struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	IsAccountVerified bool      `json:"isAccountVerified"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewUserProfile strips credentials and verification state from a user.
func NewUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		IsAccountVerified: user.IsAccountVerified,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}
}
