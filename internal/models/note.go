package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a persisted user note.
type Note struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"ownerId" db:"owner_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NoteImage is an image attached to a note. Blob is only populated by the
// resource endpoints; list queries select metadata columns.
type NoteImage struct {
	ID          uuid.UUID `json:"id" db:"id"`
	NoteID      uuid.UUID `json:"noteId" db:"note_id"`
	AltText     *string   `json:"altText" db:"alt_text"`
	ContentType string    `json:"-" db:"content_type"`
	Blob        []byte    `json:"-" db:"blob"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// NoteImageMeta is the metadata projection used by editor and detail views.
type NoteImageMeta struct {
	ID      uuid.UUID `json:"id" db:"id"`
	AltText *string   `json:"altText" db:"alt_text"`
}

// ImageUpdate describes a reconciliation entry for an image that already
// exists on the note. Blob == nil means the submission only changed the alt
// text and the image keeps its id; a non-nil Blob replaces the stored blob
// and the image is assigned a fresh id.
type ImageUpdate struct {
	ID          uuid.UUID
	AltText     *string
	ContentType string
	Blob        []byte
}

// NewImage describes an image inserted by a submission.
type NewImage struct {
	AltText     *string
	ContentType string
	Blob        []byte
}

// NoteUpdate is the validated, typed payload applied to a note in one
// transaction. Images not referenced by Updates are deleted.
type NoteUpdate struct {
	Title     string
	Content   string
	Updates   []ImageUpdate
	NewImages []NewImage
}
