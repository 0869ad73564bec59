package service

import (
	"context"

	"github.com/google/uuid"

	"notes-server/internal/models"
)

// UserService covers signup and the user browse surface.
type UserService interface {
	Register(ctx context.Context, username, name, email, password string) (*models.User, error)
	GetProfile(ctx context.Context, username string) (*models.User, error)
	Search(ctx context.Context, term string) ([]models.UserSearchResult, error)
	GetUserImage(ctx context.Context, imageID uuid.UUID) (*models.UserImage, error)
}
