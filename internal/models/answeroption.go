package models

import (
	"time"

	"github.com/google/uuid"
)

// OptionProvenance records whether an option was predefined by the host or
// contributed by a player during play.
type OptionProvenance string

const (
	OptionProvenancePredefined OptionProvenance = "predefined"
	OptionProvenanceCustom     OptionProvenance = "custom"
)

// AnswerOption is one selectable choice for a question. Text is unique per
// question under case-insensitive, trimmed comparison.
type AnswerOption struct {
	ID              uuid.UUID        `json:"id"`
	QuestionID      uuid.UUID        `json:"question_id"`
	Text            string           `json:"text"`
	Provenance      OptionProvenance `json:"provenance"`
	ContributorName *string          `json:"contributor_name,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
