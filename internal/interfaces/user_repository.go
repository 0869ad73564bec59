package interfaces

import (
	"context"

	"github.com/google/uuid"

	"notes-server/internal/models"
)

// UserRepository is the persistence collaborator for accounts and avatars.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Search(ctx context.Context, term string) ([]models.UserSearchResult, error)
	GetImage(ctx context.Context, imageID uuid.UUID) (*models.UserImage, error)
}
