package service

import (
	"context"
	"strings"

	"wouldyourather/internal/models"
	"wouldyourather/internal/repository"
)

// UserService manages accounts outside the signup flow.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SetStaff grants or removes back-office access for username.
func (s *UserService) SetStaff(ctx context.Context, username string, staff bool) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.NewValidationError("Username is required")
	}
	return s.userRepo.SetStaff(ctx, username, staff)
}

func (s *UserService) ListStaff(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListStaff(ctx)
}

func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}
