package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionKind defines how a question is rendered.
type QuestionKind string

const (
	QuestionKindText  QuestionKind = "text"
	QuestionKindImage QuestionKind = "image"
)

// Question belongs to a game. Options holds the predefined option strings in
// display order; they are materialized into answer_options when the question
// becomes active. CorrectAnswer is nil for opinion questions.
type Question struct {
	ID                 uuid.UUID    `json:"id"`
	GameID             uuid.UUID    `json:"game_id"`
	Kind               QuestionKind `json:"kind"`
	Prompt             string       `json:"prompt"`
	ImageURL           *string      `json:"image_url,omitempty"`
	Options            []string     `json:"options"`
	CorrectAnswer      *string      `json:"correct_answer,omitempty"`
	NoCorrectAnswer    bool         `json:"no_correct_answer"`
	AllowCustomAnswers bool         `json:"allow_custom_answers"`
	Position           int          `json:"position"`
	CreatedAt          time.Time    `json:"created_at"`
}

// IsCorrect reports whether the given option text counts as a correct answer
// for this question. Opinion questions treat every submission as correct.
func (q *Question) IsCorrect(optionText string) bool {
	if q.NoCorrectAnswer {
		return true
	}
	return q.CorrectAnswer != nil && *q.CorrectAnswer == optionText
}
