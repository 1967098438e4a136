package question

import (
	"github.com/google/uuid"

	"github.com/mcdev12/partytrivia/internal/models"
)

// CreateQuestionRequest carries the host's new-question form.
type CreateQuestionRequest struct {
	ID                 uuid.UUID
	GameID             uuid.UUID
	Kind               models.QuestionKind
	Prompt             string
	ImageURL           *string
	Options            []string
	CorrectAnswer      *string
	NoCorrectAnswer    bool
	AllowCustomAnswers bool
}

// UpdateQuestionRequest carries a host edit.
type UpdateQuestionRequest struct {
	Kind               models.QuestionKind
	Prompt             string
	ImageURL           *string
	Options            []string
	CorrectAnswer      *string
	NoCorrectAnswer    bool
	AllowCustomAnswers bool
}
