package events

import "time"

// QuestionView is the rendering-ready shape of the active question sent to
// clients. Options carries both predefined and custom options in creation
// order.
type QuestionView struct {
	ID                 string       `json:"id"`
	Kind               string       `json:"kind"`
	Prompt             string       `json:"prompt"`
	ImageURL           *string      `json:"image_url,omitempty"`
	Options            []OptionView `json:"options"`
	AllowCustomAnswers bool         `json:"allow_custom_answers"`
	NoCorrectAnswer    bool         `json:"no_correct_answer"`
}

// OptionView is one selectable option as clients see it.
type OptionView struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	Custom          bool    `json:"custom"`
	ContributorName *string `json:"contributor_name,omitempty"`
}

// QuestionChangedPayload announces that the active question for the game has
// changed (advance/back/host-set).
type QuestionChangedPayload struct {
	Question  QuestionView `json:"question"`
	ChangedAt time.Time    `json:"changed_at"`
}

// VoteTallyChangedPayload carries a full tally snapshot. Source distinguishes
// authoritative post-commit snapshots from best-effort ones.
type VoteTallyChangedPayload struct {
	QuestionID string         `json:"question_id"`
	VoteCounts map[string]int `json:"vote_counts"`
	TotalVotes int            `json:"total_votes"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Source     string         `json:"source"`
}

// CustomAnswerAddedPayload announces a new selectable option.
type CustomAnswerAddedPayload struct {
	QuestionID string     `json:"question_id"`
	Option     OptionView `json:"option"`
	AddedAt    time.Time  `json:"added_at"`
}

// ResultsShownPayload signals that the host moved the game to its results
// phase; clients navigate away from voting.
type ResultsShownPayload struct{}

// GameResetPayload signals that all per-game transient state has been cleared.
type GameResetPayload struct{}

// LoadingQuestionPayload is an advisory-only transition-in-progress signal so
// clients can show a spinner before the authoritative QuestionChanged arrives.
type LoadingQuestionPayload struct {
	StartedAt time.Time `json:"started_at"`
}
