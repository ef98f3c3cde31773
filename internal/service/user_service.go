package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// UserService exposes profile operations for the authenticated user.
type UserService interface {
	GetUser(ctx context.Context, userID uint) (*domain.User, error)
	UpdateUserName(ctx context.Context, userID uint, name string) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      *logger.Logger
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, baseLog *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      baseLog.With("service", "UserService"),
	}
}

func (s *userService) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = nil
	return user, nil
}

func (s *userService) UpdateUserName(ctx context.Context, userID uint, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidationFailed
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Name = name
	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, err
	}

	user.PasswordHash = nil
	return user, nil
}
