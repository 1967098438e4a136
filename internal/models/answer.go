package models

import (
	"time"

	"github.com/google/uuid"
)

// Answer is a participant's recorded vote for a question. Exactly one row
// exists per (participant, question) pair; resubmissions update in place.
// Correct is computed once at write time from the question's correctness rule.
type Answer struct {
	ID            uuid.UUID `json:"id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	QuestionID    uuid.UUID `json:"question_id"`
	OptionID      uuid.UUID `json:"option_id"`
	Correct       bool      `json:"correct"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
