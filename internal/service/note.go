package service

import (
	"context"

	"github.com/google/uuid"

	"notes-server/internal/forms"
	"notes-server/internal/models"
)

// NoteService orchestrates note reads and validated submissions. All
// operations are scoped to the owner's username; a note that exists but
// belongs to someone else behaves as not found.
type NoteService interface {
	ListNotes(ctx context.Context, username string) (*models.User, []models.Note, error)
	GetNote(ctx context.Context, username string, noteID uuid.UUID) (*models.Note, []models.NoteImageMeta, error)
	CreateNote(ctx context.Context, username string, draft forms.NoteDraft) (uuid.UUID, error)
	UpdateNote(ctx context.Context, username string, noteID uuid.UUID, draft forms.NoteDraft) error
	DeleteNote(ctx context.Context, username string, noteID uuid.UUID) error
	GetNoteImage(ctx context.Context, imageID uuid.UUID) (*models.NoteImage, error)
}
