package services

import (
	"context"

	"github.com/renohub/reno_backend/internal/core/domain"
	"github.com/renohub/reno_backend/internal/dto"
)

// UserSvcFacade manages platform accounts and password/JWT authentication.
// Federated logins (SMS, WeChat, OAuth) live outside this service.
type UserSvcFacade interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
