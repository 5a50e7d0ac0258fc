package dto

import (
	"time"

	"github.com/yourusername/testhub-api/internal/domain/entity"
)

// UserResponse represents a user in API responses. The password hash
// never leaves the entity layer.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// NewUserResponse creates a user DTO from the entity.
func NewUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Roles:     user.RoleNames(),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

// NewAuthResponse creates the register/login response payload.
func NewAuthResponse(token string, user *entity.User) *AuthResponse {
	return &AuthResponse{
		Token: token,
		User:  NewUserResponse(user),
	}
}
