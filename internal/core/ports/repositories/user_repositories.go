package repositories

import (
	"context"

	"github.com/renohub/reno_backend/internal/core/domain"
)

// UserRepository defines persistence operations for platform accounts.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*domain.User, error)
}
