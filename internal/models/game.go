package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus defines the lifecycle phase of a game.
type GameStatus string

const (
	GameStatusWaiting GameStatus = "waiting"
	GameStatusActive  GameStatus = "active"
	GameStatusResults GameStatus = "results"
)

// Game represents one isolated trivia session. At most one game is active
// system-wide; guests always join the active game.
type Game struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Description       *string    `json:"description,omitempty"`
	Status            GameStatus `json:"status"`
	CurrentQuestionID *uuid.UUID `json:"current_question_id,omitempty"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
