package interfaces

import (
	"context"

	"github.com/google/uuid"

	"notes-server/internal/models"
)

// NoteRepository is the persistence collaborator for notes and their images.
// Create and ApplyUpdate are transactional: either every image mutation in
// the payload is committed or none is.
type NoteRepository interface {
	GetByID(ctx context.Context, noteID uuid.UUID) (*models.Note, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Note, error)
	Create(ctx context.Context, ownerID uuid.UUID, update models.NoteUpdate) (uuid.UUID, error)
	ApplyUpdate(ctx context.Context, noteID uuid.UUID, update models.NoteUpdate) error
	Delete(ctx context.Context, noteID uuid.UUID) error
	ListImageMeta(ctx context.Context, noteID uuid.UUID) ([]models.NoteImageMeta, error)
	GetImage(ctx context.Context, imageID uuid.UUID) (*models.NoteImage, error)
}
