package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notes-server/internal/forms"
	"notes-server/internal/interfaces"
	"notes-server/internal/models"
)

type noteServiceImpl struct {
	notes  interfaces.NoteRepository
	users  interfaces.UserRepository
	logger *zap.Logger
}

// NewNoteService creates the NoteService implementation.
func NewNoteService(notes interfaces.NoteRepository, users interfaces.UserRepository, logger *zap.Logger) NoteService {
	return &noteServiceImpl{
		notes:  notes,
		users:  users,
		logger: logger.Named("NoteService"),
	}
}

func (s *noteServiceImpl) ListNotes(ctx context.Context, username string) (*models.User, []models.Note, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	notes, err := s.notes.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, notes, nil
}

func (s *noteServiceImpl) GetNote(ctx context.Context, username string, noteID uuid.UUID) (*models.Note, []models.NoteImageMeta, error) {
	note, err := s.ownedNote(ctx, username, noteID)
	if err != nil {
		return nil, nil, err
	}
	images, err := s.notes.ListImageMeta(ctx, noteID)
	if err != nil {
		return nil, nil, err
	}
	return note, images, nil
}

func (s *noteServiceImpl) CreateNote(ctx context.Context, username string, draft forms.NoteDraft) (uuid.UUID, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, err
	}

	update, err := buildNoteUpdate(draft)
	if err != nil {
		return uuid.Nil, err
	}
	// A create has no persisted images to reconcile against; submitted ids
	// would reference nothing.
	if len(update.Updates) > 0 {
		return uuid.Nil, fmt.Errorf("%w: new note cannot reference existing images", models.ErrInvalidInput)
	}

	noteID, err := s.notes.Create(ctx, user.ID, update)
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.Info("Note created", zap.String("noteID", noteID.String()), zap.String("username", username))
	return noteID, nil
}

func (s *noteServiceImpl) UpdateNote(ctx context.Context, username string, noteID uuid.UUID, draft forms.NoteDraft) error {
	if _, err := s.ownedNote(ctx, username, noteID); err != nil {
		return err
	}

	update, err := buildNoteUpdate(draft)
	if err != nil {
		return err
	}

	if err := s.notes.ApplyUpdate(ctx, noteID, update); err != nil {
		return err
	}
	s.logger.Info("Note updated", zap.String("noteID", noteID.String()), zap.String("username", username))
	return nil
}

func (s *noteServiceImpl) DeleteNote(ctx context.Context, username string, noteID uuid.UUID) error {
	if _, err := s.ownedNote(ctx, username, noteID); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return err
	}
	s.logger.Info("Note deleted", zap.String("noteID", noteID.String()), zap.String("username", username))
	return nil
}

func (s *noteServiceImpl) GetNoteImage(ctx context.Context, imageID uuid.UUID) (*models.NoteImage, error) {
	return s.notes.GetImage(ctx, imageID)
}

// ownedNote resolves the note and checks it belongs to the named user. A
// note owned by someone else is reported as not found, not forbidden, so
// note ids cannot be probed across users.
func (s *noteServiceImpl) ownedNote(ctx context.Context, username string, noteID uuid.UUID) (*models.Note, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != user.ID {
		return nil, fmt.Errorf("%w: note %s", models.ErrNoteNotFound, noteID)
	}
	return note, nil
}

// buildNoteUpdate translates validated image drafts into the reconciliation
// payload: id without file → alt-text update, id with file → blob
// replacement, file without id → insertion. Fieldsets with neither are
// ignored (the editor renders one empty fieldset by default).
func buildNoteUpdate(draft forms.NoteDraft) (models.NoteUpdate, error) {
	update := models.NoteUpdate{
		Title:   draft.Title,
		Content: draft.Content,
	}

	for _, img := range draft.Images {
		hasFile := img.HasFile()
		if img.ID == "" {
			if !hasFile {
				continue
			}
			update.NewImages = append(update.NewImages, models.NewImage{
				AltText:     img.AltText,
				ContentType: img.File.ContentType,
				Blob:        img.File.Data,
			})
			continue
		}

		id, err := uuid.Parse(img.ID)
		if err != nil {
			return models.NoteUpdate{}, fmt.Errorf("%w: image id %q", models.ErrInvalidInput, img.ID)
		}
		entry := models.ImageUpdate{ID: id, AltText: img.AltText}
		if hasFile {
			entry.ContentType = img.File.ContentType
			entry.Blob = img.File.Data
		}
		update.Updates = append(update.Updates, entry)
	}

	return update, nil
}
