package models

import (
	"time"

	"github.com/google/uuid"
)

type Blog struct {
	ID          uuid.UUID
	Username    string
	Title       string
	Description string
	Thumbnail   string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BlogPatch carries partial update values.
// A nil field leaves the stored value untouched.
// Thumbnail set to an empty string clears the stored thumbnail.
type BlogPatch struct {
	Title       *string
	Description *string
	Thumbnail   *string
	Content     *string
}
