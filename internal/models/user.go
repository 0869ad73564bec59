package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Name         *string   `json:"name" db:"name"`
	Email        string    `json:"-" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSearchResult is one row of the user browse/search listing.
type UserSearchResult struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Username string     `json:"username" db:"username"`
	Name     *string    `json:"name" db:"name"`
	ImageID  *uuid.UUID `json:"imageId" db:"image_id"`
}

// UserImage is a profile picture blob.
type UserImage struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	ContentType string    `json:"-" db:"content_type"`
	Blob        []byte    `json:"-" db:"blob"`
}
