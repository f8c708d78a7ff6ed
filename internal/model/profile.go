package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile carries the denormalized display data the notification builders
// need; the full profile document lives in the profile service.
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Owner     uuid.UUID `db:"owner" json:"owner"`
	Name      string    `db:"name" json:"name"`
	Image     string    `db:"image" json:"image,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
