package services

import (
	"context"
	"fmt"

	"github.com/daria-hk/contacts-api/internal/models"
	"github.com/daria-hk/contacts-api/internal/repositories"
	"github.com/daria-hk/contacts-api/internal/storage"
)

// UserService handles profile operations for the authenticated user.
type UserService struct {
	users   repositories.UserRepository
	avatars storage.AvatarStore
}

func NewUserService(users repositories.UserRepository, avatars storage.AvatarStore) *UserService {
	return &UserService{
		users:   users,
		avatars: avatars,
	}
}

// UpdateAvatar uploads the image to the external host keyed by username and
// persists the returned URL. Upload failures propagate to the caller.
func (s *UserService) UpdateAvatar(ctx context.Context, user *models.User, data []byte, contentType string) (*models.User, error) {
	key := fmt.Sprintf("avatars/%s", user.Username)
	url, err := s.avatars.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}
	return s.users.UpdateAvatar(ctx, user.Email, url)
}
