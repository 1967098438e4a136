package vote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/apperr"
	"github.com/mcdev12/partytrivia/internal/bus"
	"github.com/mcdev12/partytrivia/internal/events"
	"github.com/mcdev12/partytrivia/internal/models"
	"github.com/mcdev12/partytrivia/internal/ratelimit"
)

// AnswerRepository defines what the app layer needs from the answer store.
type AnswerRepository interface {
	UpsertAnswer(ctx context.Context, req UpsertAnswerRequest) (*models.Answer, error)
	GetAnswer(ctx context.Context, participantID, questionID uuid.UUID) (*models.Answer, error)
	CountAnswersByOption(ctx context.Context, questionID uuid.UUID) (map[uuid.UUID]int, error)
	DeleteAnswersByGame(ctx context.Context, gameID uuid.UUID) (int, error)
	DeleteAnswersByQuestion(ctx context.Context, questionID uuid.UUID) (int, error)
}

// OptionStore defines what the app layer needs from the option registry.
type OptionStore interface {
	GetOptionsByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.AnswerOption, error)
	GetOptionByText(ctx context.Context, questionID uuid.UUID, text string) (*models.AnswerOption, error)
}

// QuestionStore defines what the app layer needs from the question store.
type QuestionStore interface {
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
}

// App handles vote business logic: submissions, tallies and bulk resets.
type App struct {
	repo      AnswerRepository
	options   OptionStore
	questions QuestionStore
	publisher bus.Publisher
	limiter   ratelimit.Limiter
	clock     clockwork.Clock
}

// NewApp creates a new vote App.
func NewApp(repo AnswerRepository, options OptionStore, questions QuestionStore, publisher bus.Publisher, limiter ratelimit.Limiter, clock clockwork.Clock) *App {
	return &App{
		repo:      repo,
		options:   options,
		questions: questions,
		publisher: publisher,
		limiter:   limiter,
		clock:     clock,
	}
}

// Tally computes the current vote distribution for a question. Every known
// option appears in the result, zero-initialized, so consumers always see the
// full option set. Votes referencing options that no longer exist are not
// counted; the total always equals the sum of the per-option counts.
func (a *App) Tally(ctx context.Context, questionID uuid.UUID) (models.VoteTally, error) {
	tally := models.VoteTally{
		QuestionID: questionID,
		Counts:     make(map[string]int),
		Timestamp:  a.clock.Now().UTC(),
	}

	options, err := a.options.GetOptionsByQuestion(ctx, questionID)
	if err != nil {
		return tally, fmt.Errorf("failed to load options for tally: %w", err)
	}
	textByID := make(map[uuid.UUID]string, len(options))
	for _, opt := range options {
		textByID[opt.ID] = opt.Text
		tally.Counts[opt.Text] = 0
	}

	counts, err := a.repo.CountAnswersByOption(ctx, questionID)
	if err != nil {
		return tally, fmt.Errorf("failed to count votes: %w", err)
	}
	for optionID, count := range counts {
		text, ok := textByID[optionID]
		if !ok {
			continue
		}
		tally.Counts[text] = count
		tally.Total += count
	}
	return tally, nil
}

// GetAnswerForParticipant returns the participant's recorded answer for a
// question, or nil when they have not voted yet.
func (a *App) GetAnswerForParticipant(ctx context.Context, participantID, questionID uuid.UUID) (*models.Answer, error) {
	answer, err := a.repo.GetAnswer(ctx, participantID, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return answer, nil
}

// Submit records a participant's vote. Re-voting replaces the previous vote;
// submitting the already-recorded option is a no-op that triggers no
// broadcast. Preview submissions inside the debounce window are dropped
// without touching storage.
func (a *App) Submit(ctx context.Context, req SubmitRequest) (models.SubmitResult, error) {
	if req.Preview && !a.limiter.Allow(ratelimit.Key("vote", req.ParticipantID, req.QuestionID)) {
		return models.SubmitResult{Debounced: true}, nil
	}

	option, err := a.options.GetOptionByText(ctx, req.QuestionID, req.OptionText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SubmitResult{}, fmt.Errorf("option %q: %w", req.OptionText, apperr.ErrInvalidOption)
		}
		return models.SubmitResult{}, fmt.Errorf("failed to resolve option: %w", err)
	}

	question, err := a.questions.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("failed to get question: %w", err)
	}
	correct := question.IsCorrect(option.Text)

	existing, err := a.repo.GetAnswer(ctx, req.ParticipantID, req.QuestionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.SubmitResult{}, fmt.Errorf("failed to check existing answer: %w", err)
	}
	if existing != nil && existing.OptionID == option.ID {
		tally, err := a.Tally(ctx, req.QuestionID)
		if err != nil {
			return models.SubmitResult{}, err
		}
		return models.SubmitResult{Accepted: true, Correct: existing.Correct, NoOp: true, Tally: tally}, nil
	}

	if _, err := a.repo.UpsertAnswer(ctx, UpsertAnswerRequest{
		ID:            uuid.New(),
		ParticipantID: req.ParticipantID,
		QuestionID:    req.QuestionID,
		OptionID:      option.ID,
		Correct:       correct,
	}); err != nil {
		return models.SubmitResult{}, err
	}

	tally, err := a.Tally(ctx, req.QuestionID)
	if err != nil {
		return models.SubmitResult{}, err
	}

	a.publishTally(ctx, question.GameID, tally)

	log.Debug().
		Str("participant_id", req.ParticipantID.String()).
		Str("question_id", req.QuestionID.String()).
		Bool("correct", correct).
		Msg("vote recorded")
	return models.SubmitResult{Accepted: true, Correct: correct, Tally: tally}, nil
}

// ResetByGame bulk-erases all answers for a game and returns the erased count.
func (a *App) ResetByGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	deleted, err := a.repo.DeleteAnswersByGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	log.Info().Str("game_id", gameID.String()).Int("deleted", deleted).Msg("answers reset for game")
	return deleted, nil
}

// ResetByQuestion erases all answers for one question.
func (a *App) ResetByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	deleted, err := a.repo.DeleteAnswersByQuestion(ctx, questionID)
	if err != nil {
		return 0, err
	}
	log.Info().Str("question_id", questionID.String()).Int("deleted", deleted).Msg("answers reset for question")
	return deleted, nil
}

// PublishTally emits the authoritative tally for a question. Delivery is
// best-effort: failures are logged and never block the write path.
func (a *App) PublishTally(ctx context.Context, gameID uuid.UUID, tally models.VoteTally) {
	a.publishTally(ctx, gameID, tally)
}

func (a *App) publishTally(ctx context.Context, gameID uuid.UUID, tally models.VoteTally) {
	payload := events.VoteTallyChangedPayload{
		QuestionID: tally.QuestionID.String(),
		VoteCounts: tally.Counts,
		TotalVotes: tally.Total,
		UpdatedAt:  tally.Timestamp,
		Source:     "authoritative",
	}
	event, err := bus.NewEvent(gameID, events.KindVoteTallyChanged, a.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to build vote tally event")
		return
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).
			Str("question_id", tally.QuestionID.String()).
			Msg("failed to publish vote tally event")
	}
}
