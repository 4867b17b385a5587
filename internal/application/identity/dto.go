package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/identity"
)

// RegisterInput contains input for account creation
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput contains input for login
type LoginInput struct {
	Email    string
	Password string
}

// UserInfo is the public profile returned with a token
type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// ToUserInfo builds the public profile of a user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserInfo  `json:"user"`
}

// ForgotPasswordResult is identical whether or not the account exists.
// ResetToken and ResetURL are filled only outside production.
type ForgotPasswordResult struct {
	Message    string `json:"-"`
	ResetToken string `json:"resetToken,omitempty"`
	ResetURL   string `json:"resetUrl,omitempty"`
}

// ResetPasswordInput contains input for consuming a reset token
type ResetPasswordInput struct {
	Token    string
	Password string
}
