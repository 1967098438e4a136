package answeroption

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/apperr"
	"github.com/mcdev12/partytrivia/internal/bus"
	"github.com/mcdev12/partytrivia/internal/events"
	"github.com/mcdev12/partytrivia/internal/models"
	"github.com/mcdev12/partytrivia/internal/ratelimit"
	"github.com/mcdev12/partytrivia/internal/vote"
)

// OptionRepository defines what the app layer needs from the repository.
type OptionRepository interface {
	CountOptionsByQuestion(ctx context.Context, questionID uuid.UUID) (int, error)
	InsertPredefinedOptions(ctx context.Context, questionID uuid.UUID, texts []string) error
	InsertCustomOption(ctx context.Context, id, questionID uuid.UUID, text string, contributorName *string) (*models.AnswerOption, error)
	OptionTextExists(ctx context.Context, questionID uuid.UUID, text string) (bool, error)
	GetOptionByText(ctx context.Context, questionID uuid.UUID, text string) (*models.AnswerOption, error)
	GetOptionsByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.AnswerOption, error)
	DeleteCustomOptionsByGame(ctx context.Context, gameID uuid.UUID) (int, error)
	DeleteCustomOptionsByQuestion(ctx context.Context, questionID uuid.UUID) (int, error)
}

// QuestionStore defines what the app layer needs from the question store.
type QuestionStore interface {
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
}

// ParticipantStore defines what the app layer needs from the participant store.
type ParticipantStore interface {
	GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error)
}

// VoteSubmitter records the contributor's automatic vote for a newly added
// custom option.
type VoteSubmitter interface {
	Submit(ctx context.Context, req vote.SubmitRequest) (models.SubmitResult, error)
}

// AddCustomResult is the outcome of a custom answer contribution. When
// Debounced is set the request was dropped inside the rate window and nothing
// else is populated.
type AddCustomResult struct {
	Debounced bool
	Option    *models.AnswerOption
	Tally     models.VoteTally
}

// App handles answer option business logic.
type App struct {
	repo         OptionRepository
	questions    QuestionStore
	participants ParticipantStore
	votes        VoteSubmitter
	publisher    bus.Publisher
	limiter      ratelimit.Limiter
	clock        clockwork.Clock
}

// NewApp creates a new answer option App.
func NewApp(repo OptionRepository, questions QuestionStore, participants ParticipantStore, votes VoteSubmitter, publisher bus.Publisher, limiter ratelimit.Limiter, clock clockwork.Clock) *App {
	return &App{
		repo:         repo,
		questions:    questions,
		participants: participants,
		votes:        votes,
		publisher:    publisher,
		limiter:      limiter,
		clock:        clock,
	}
}

// Populate registers a question's predefined options. It is idempotent: once
// any option exists for the question it does nothing, so re-activating a
// question never duplicates options or discards custom ones.
func (a *App) Populate(ctx context.Context, questionID uuid.UUID, predefined []string) error {
	count, err := a.repo.CountOptionsByQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if count > 0 || len(predefined) == 0 {
		return nil
	}
	if err := a.repo.InsertPredefinedOptions(ctx, questionID, predefined); err != nil {
		return err
	}
	log.Info().
		Str("question_id", questionID.String()).
		Int("count", len(predefined)).
		Msg("predefined options populated")
	return nil
}

// AddCustom registers a participant-contributed option and records the
// contributor's vote for it in the same motion. Duplicate texts (compared
// case-insensitively after trimming) are rejected.
func (a *App) AddCustom(ctx context.Context, questionID, participantID uuid.UUID, text string) (AddCustomResult, error) {
	if !a.limiter.Allow(ratelimit.Key("custom-answer", participantID, questionID)) {
		return AddCustomResult{Debounced: true}, nil
	}

	question, err := a.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return AddCustomResult{}, fmt.Errorf("failed to get question: %w", err)
	}
	if !question.AllowCustomAnswers {
		return AddCustomResult{}, fmt.Errorf("question does not accept custom answers: %w", apperr.ErrPermissionDenied)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return AddCustomResult{}, fmt.Errorf("custom answer text is required: %w", apperr.ErrInvalidInput)
	}

	exists, err := a.repo.OptionTextExists(ctx, questionID, trimmed)
	if err != nil {
		return AddCustomResult{}, err
	}
	if exists {
		return AddCustomResult{}, fmt.Errorf("answer %q already exists: %w", trimmed, apperr.ErrDuplicateOption)
	}

	var contributorName *string
	if participant, err := a.participants.GetParticipant(ctx, participantID); err != nil {
		log.Warn().Err(err).Str("participant_id", participantID.String()).Msg("failed to resolve contributor name")
	} else {
		contributorName = &participant.Name
	}

	option, err := a.repo.InsertCustomOption(ctx, uuid.New(), questionID, trimmed, contributorName)
	if err != nil {
		return AddCustomResult{}, err
	}

	a.publishOptionAdded(ctx, question.GameID, option)

	result, err := a.votes.Submit(ctx, vote.SubmitRequest{
		ParticipantID: participantID,
		QuestionID:    questionID,
		OptionText:    option.Text,
	})
	if err != nil {
		return AddCustomResult{}, fmt.Errorf("failed to record contributor vote: %w", err)
	}

	log.Info().
		Str("question_id", questionID.String()).
		Str("option_id", option.ID.String()).
		Str("participant_id", participantID.String()).
		Msg("custom answer added")
	return AddCustomResult{Option: option, Tally: result.Tally}, nil
}

// GetOptionsByQuestion lists a question's options in registration order.
func (a *App) GetOptionsByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.AnswerOption, error) {
	return a.repo.GetOptionsByQuestion(ctx, questionID)
}

// GetOptionByText resolves an option by its text, ignoring case and
// surrounding whitespace.
func (a *App) GetOptionByText(ctx context.Context, questionID uuid.UUID, text string) (*models.AnswerOption, error) {
	return a.repo.GetOptionByText(ctx, questionID, text)
}

// ResetCustomByGame bulk-erases custom options across a game's questions.
func (a *App) ResetCustomByGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	deleted, err := a.repo.DeleteCustomOptionsByGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	log.Info().Str("game_id", gameID.String()).Int("deleted", deleted).Msg("custom options reset for game")
	return deleted, nil
}

func (a *App) publishOptionAdded(ctx context.Context, gameID uuid.UUID, option *models.AnswerOption) {
	payload := events.CustomAnswerAddedPayload{
		QuestionID: option.QuestionID.String(),
		Option:     events.NewOptionView(*option),
		AddedAt:    a.clock.Now().UTC(),
	}
	event, err := bus.NewEvent(gameID, events.KindCustomAnswerAdded, a.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to build custom answer event")
		return
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).
			Str("option_id", option.ID.String()).
			Msg("failed to publish custom answer event")
	}
}
