package user

import (
	"context"

	"github.com/quillhq/quill/internal/models"
	"github.com/quillhq/quill/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepo
}

func NewService(userRepo repository.UserRepo) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the stored user record for username
func (s *UserService) GetProfile(ctx context.Context, username string) (models.User, error) {
	return s.userRepo.GetUserByUsername(ctx, username)
}
