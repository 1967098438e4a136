package vote

import "github.com/google/uuid"

// SubmitRequest carries one vote submission. Preview marks the optimistic
// pre-commit path, which is debounced; the final authoritative submission is
// always accepted once the window clears.
type SubmitRequest struct {
	ParticipantID uuid.UUID
	QuestionID    uuid.UUID
	OptionText    string
	Preview       bool
}

// UpsertAnswerRequest is the repository-level write for one answer row.
type UpsertAnswerRequest struct {
	ID            uuid.UUID
	ParticipantID uuid.UUID
	QuestionID    uuid.UUID
	OptionID      uuid.UUID
	Correct       bool
}
