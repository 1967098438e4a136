package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a guest session. Token is the opaque session credential the
// client presents on every call; each join mints a fresh identity even when
// the display name repeats.
type Participant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
