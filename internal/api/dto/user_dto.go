package dto

import (
	"time"

	"github.com/spec-kit/resume-service/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// WithdrawRequest re-confirms the password before deleting an account.
type WithdrawRequest struct {
	Password string `json:"password"`
}

// TokenResponse mirrors the access cookie in the body for clients that use bearer headers.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTokenResponse computes expires_in relative to now.
func NewTokenResponse(token string, expiresAt, now time.Time) TokenResponse {
	return TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(expiresAt.Sub(now) / time.Second),
		ExpiresAt: expiresAt,
	}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse hides the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// ExistsResponse answers duplicate checks.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}
