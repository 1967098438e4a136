package events

import "github.com/mcdev12/partytrivia/internal/models"

// NewQuestionView builds the client-facing shape of a question from the stored
// question and its registered options. The correct answer is never included.
func NewQuestionView(q *models.Question, options []models.AnswerOption) QuestionView {
	view := QuestionView{
		ID:                 q.ID.String(),
		Kind:               string(q.Kind),
		Prompt:             q.Prompt,
		ImageURL:           q.ImageURL,
		Options:            make([]OptionView, 0, len(options)),
		AllowCustomAnswers: q.AllowCustomAnswers,
		NoCorrectAnswer:    q.NoCorrectAnswer,
	}
	for _, opt := range options {
		view.Options = append(view.Options, NewOptionView(opt))
	}
	return view
}

// NewOptionView builds the client-facing shape of one option.
func NewOptionView(opt models.AnswerOption) OptionView {
	return OptionView{
		ID:              opt.ID.String(),
		Text:            opt.Text,
		Custom:          opt.Provenance == models.OptionProvenanceCustom,
		ContributorName: opt.ContributorName,
	}
}
