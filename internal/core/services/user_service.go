package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/renohub/reno_backend/internal/apperrors"
	"github.com/renohub/reno_backend/internal/core/domain"
	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/dto"
	"github.com/renohub/reno_backend/internal/middleware"
	"github.com/renohub/reno_backend/internal/platform/config"
	"github.com/renohub/reno_backend/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid phone or password")

type userService struct {
	userRepo portsrepo.UserRepository
	cfg      *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository, cfg *config.Config) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, cfg: cfg}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userRepo.FindUserByPhone(ctx, req.Phone); err == nil {
		return nil, fmt.Errorf("%w: phone number already registered", apperrors.ErrDuplicate)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to hash password", err)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         domain.UserRole(req.Role),
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("User registered", slog.String("user_id", user.UserID), slog.String("role", req.Role))
	return &user, nil
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrInvalidCredentials)
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Warn("Login failed, password mismatch", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrInvalidCredentials)
	}

	token, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate token", err)
	}

	return &dto.LoginResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}
