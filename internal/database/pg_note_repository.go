package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"notes-server/internal/interfaces"
	"notes-server/internal/models"
)

// Compile-time check to ensure pgNoteRepository implements the interface
var _ interfaces.NoteRepository = (*pgNoteRepository)(nil)

type pgNoteRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgNoteRepository creates a PostgreSQL-backed NoteRepository.
func NewPgNoteRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.NoteRepository {
	return &pgNoteRepository{
		pool:   pool,
		logger: logger.Named("PgNoteRepo"),
	}
}

func (r *pgNoteRepository) GetByID(ctx context.Context, noteID uuid.UUID) (*models.Note, error) {
	query := `SELECT id, owner_id, title, content, created_at, updated_at FROM notes WHERE id = $1`

	var note models.Note
	if err := pgxscan.Get(ctx, r.pool, &note, query, noteID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Note not found", zap.String("noteID", noteID.String()))
			return nil, fmt.Errorf("%w: note %s", models.ErrNoteNotFound, noteID)
		}
		r.logger.Error("Error querying note by id", zap.String("noteID", noteID.String()), zap.Error(err))
		return nil, fmt.Errorf("database error querying note %s: %w", noteID, err)
	}
	return &note, nil
}

func (r *pgNoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Note, error) {
	query := `
        SELECT id, owner_id, title, content, created_at, updated_at
        FROM notes
        WHERE owner_id = $1
        ORDER BY updated_at DESC`

	var notes []models.Note
	if err := pgxscan.Select(ctx, r.pool, &notes, query, ownerID); err != nil {
		r.logger.Error("Error listing notes by owner", zap.String("ownerID", ownerID.String()), zap.Error(err))
		return nil, fmt.Errorf("database error listing notes for owner %s: %w", ownerID, err)
	}
	return notes, nil
}

// Create inserts the note and its initial images in one transaction.
func (r *pgNoteRepository) Create(ctx context.Context, ownerID uuid.UUID, update models.NoteUpdate) (uuid.UUID, error) {
	noteID := uuid.New()

	err := WithTransaction(ctx, r.pool, r.logger, func(ctx context.Context, tx interfaces.DBTX) error {
		query := `INSERT INTO notes (id, owner_id, title, content) VALUES ($1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, query, noteID, ownerID, update.Title, update.Content); err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}
		return insertImages(ctx, tx, noteID, update.NewImages)
	})
	if err != nil {
		r.logger.Error("Failed to create note", zap.String("ownerID", ownerID.String()), zap.Error(err))
		return uuid.Nil, err
	}

	r.logger.Debug("Note created",
		zap.String("noteID", noteID.String()),
		zap.String("ownerID", ownerID.String()),
		zap.Int("imageCount", len(update.NewImages)))
	return noteID, nil
}

// ApplyUpdate applies one validated submission to a persisted note. The
// whole reconciliation runs in a single transaction: the note row, the
// deletion of images absent from the submission, alt-text updates, blob
// replacements and insertions commit together or not at all.
//
// An image whose blob is replaced gets a fresh id; deletion therefore runs
// first, against the ids as submitted, so reassignment cannot orphan or
// delete a surviving image.
func (r *pgNoteRepository) ApplyUpdate(ctx context.Context, noteID uuid.UUID, update models.NoteUpdate) error {
	err := WithTransaction(ctx, r.pool, r.logger, func(ctx context.Context, tx interfaces.DBTX) error {
		tag, err := tx.Exec(ctx,
			`UPDATE notes SET title = $1, content = $2, updated_at = NOW() WHERE id = $3`,
			update.Title, update.Content, noteID)
		if err != nil {
			return fmt.Errorf("failed to update note row: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: note %s", models.ErrNoteNotFound, noteID)
		}

		keptIDs := make([]string, 0, len(update.Updates))
		for _, u := range update.Updates {
			keptIDs = append(keptIDs, u.ID.String())
		}
		// With no kept ids the ALL() predicate matches every image of the
		// note, which is exactly the delete-everything case.
		if _, err := tx.Exec(ctx,
			`DELETE FROM note_images WHERE note_id = $1 AND id <> ALL($2::uuid[])`,
			noteID, pq.Array(keptIDs)); err != nil {
			return fmt.Errorf("failed to delete removed images: %w", err)
		}

		for _, u := range update.Updates {
			if u.Blob == nil {
				tag, err := tx.Exec(ctx,
					`UPDATE note_images SET alt_text = $1, updated_at = NOW() WHERE id = $2 AND note_id = $3`,
					u.AltText, u.ID, noteID)
				if err != nil {
					return fmt.Errorf("failed to update image %s: %w", u.ID, err)
				}
				if tag.RowsAffected() == 0 {
					return fmt.Errorf("%w: image %s", models.ErrImageNotFound, u.ID)
				}
				continue
			}

			// Blob replacement reassigns the id.
			newID := uuid.New()
			tag, err := tx.Exec(ctx,
				`UPDATE note_images
                 SET id = $1, alt_text = $2, content_type = $3, blob = $4, updated_at = NOW()
                 WHERE id = $5 AND note_id = $6`,
				newID, u.AltText, u.ContentType, u.Blob, u.ID, noteID)
			if err != nil {
				return fmt.Errorf("failed to replace image %s: %w", u.ID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: image %s", models.ErrImageNotFound, u.ID)
			}
		}

		return insertImages(ctx, tx, noteID, update.NewImages)
	})
	if err != nil {
		if !errors.Is(err, models.ErrNoteNotFound) && !errors.Is(err, models.ErrImageNotFound) {
			r.logger.Error("Failed to apply note update", zap.String("noteID", noteID.String()), zap.Error(err))
		}
		return err
	}

	r.logger.Debug("Note update applied",
		zap.String("noteID", noteID.String()),
		zap.Int("updatedImages", len(update.Updates)),
		zap.Int("newImages", len(update.NewImages)))
	return nil
}

func insertImages(ctx context.Context, tx interfaces.DBTX, noteID uuid.UUID, images []models.NewImage) error {
	for _, img := range images {
		if _, err := tx.Exec(ctx,
			`INSERT INTO note_images (id, note_id, alt_text, content_type, blob) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), noteID, img.AltText, img.ContentType, img.Blob); err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}
	return nil
}

func (r *pgNoteRepository) Delete(ctx context.Context, noteID uuid.UUID) error {
	// note_images rows go with the note via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, noteID)
	if err != nil {
		r.logger.Error("Error deleting note", zap.String("noteID", noteID.String()), zap.Error(err))
		return fmt.Errorf("database error deleting note %s: %w", noteID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: note %s", models.ErrNoteNotFound, noteID)
	}
	r.logger.Debug("Note deleted", zap.String("noteID", noteID.String()))
	return nil
}

func (r *pgNoteRepository) ListImageMeta(ctx context.Context, noteID uuid.UUID) ([]models.NoteImageMeta, error) {
	query := `SELECT id, alt_text FROM note_images WHERE note_id = $1 ORDER BY created_at, id`

	var images []models.NoteImageMeta
	if err := pgxscan.Select(ctx, r.pool, &images, query, noteID); err != nil {
		r.logger.Error("Error listing note images", zap.String("noteID", noteID.String()), zap.Error(err))
		return nil, fmt.Errorf("database error listing images for note %s: %w", noteID, err)
	}
	return images, nil
}

func (r *pgNoteRepository) GetImage(ctx context.Context, imageID uuid.UUID) (*models.NoteImage, error) {
	query := `
        SELECT id, note_id, alt_text, content_type, blob, created_at, updated_at
        FROM note_images WHERE id = $1`

	var image models.NoteImage
	if err := pgxscan.Get(ctx, r.pool, &image, query, imageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: image %s", models.ErrImageNotFound, imageID)
		}
		r.logger.Error("Error querying note image", zap.String("imageID", imageID.String()), zap.Error(err))
		return nil, fmt.Errorf("database error querying image %s: %w", imageID, err)
	}
	return &image, nil
}
