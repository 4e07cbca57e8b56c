package dto

import (
	"github.com/renohub/reno_backend/internal/core/domain"
)

// RegisterRequest creates a platform account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=CUSTOMER CRAFTSMAN"`
}

// LoginRequest authenticates by phone and password.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the API representation of an account.
type UserResponse struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
}

// LoginResponse returns the access token with the authenticated account.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ToUserResponse converts a domain user to its API representation.
func ToUserResponse(d *domain.User) UserResponse {
	return UserResponse{
		UserID: d.UserID,
		Name:   d.Name,
		Phone:  d.Phone,
		Role:   string(d.Role),
	}
}
