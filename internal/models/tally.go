package models

import (
	"time"

	"github.com/google/uuid"
)

// VoteTally is the per-option vote count for a question, derived from the
// recorded answers. Every currently visible option has an entry; zero is a
// valid and expected count. The sum of Counts always equals Total.
type VoteTally struct {
	QuestionID uuid.UUID      `json:"question_id"`
	Counts     map[string]int `json:"vote_counts"`
	Total      int            `json:"total_votes"`
	Timestamp  time.Time      `json:"timestamp"`
}

// SubmitResult reports the outcome of a vote submission.
type SubmitResult struct {
	Accepted  bool      `json:"accepted"`
	Correct   bool      `json:"correct"`
	Debounced bool      `json:"debounced,omitempty"`
	NoOp      bool      `json:"-"`
	Tally     VoteTally `json:"-"`
}
