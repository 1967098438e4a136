package game

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
)

// GameRepository defines what the app layer needs from the repository.
type GameRepository interface {
	CreateGame(ctx context.Context, id uuid.UUID, name string, description *string) (*models.Game, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetActiveGame(ctx context.Context) (*models.Game, error)
	ListGames(ctx context.Context) ([]models.Game, error)
	SetActiveGame(ctx context.Context, id uuid.UUID) error
	UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error
	SetCurrentQuestion(ctx context.Context, id uuid.UUID, questionID *uuid.UUID) error
}

// QuestionStore defines what the app layer needs from the question store.
type QuestionStore interface {
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	GetQuestionsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Question, error)
}

// OptionRegistry defines what the app layer needs from the option registry.
type OptionRegistry interface {
	Populate(ctx context.Context, questionID uuid.UUID, predefined []string) error
	GetOptionsByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.AnswerOption, error)
	ResetCustomByGame(ctx context.Context, gameID uuid.UUID) (int, error)
}

// VoteStore defines what the app layer needs from the vote store.
type VoteStore interface {
	ResetByGame(ctx context.Context, gameID uuid.UUID) (int, error)
	Tally(ctx context.Context, questionID uuid.UUID) (models.VoteTally, error)
	PublishTally(ctx context.Context, gameID uuid.UUID, tally models.VoteTally)
}

// App orchestrates the host's control surface: game lifecycle, question
// navigation and resets.
type App struct {
	repo      GameRepository
	questions QuestionStore
	options   OptionRegistry
	votes     VoteStore
	publisher bus.Publisher
	clock     clockwork.Clock
}

// NewApp creates a new game App.
func NewApp(repo GameRepository, questions QuestionStore, options OptionRegistry, votes VoteStore, publisher bus.Publisher, clock clockwork.Clock) *App {
	return &App{
		repo:      repo,
		questions: questions,
		options:   options,
		votes:     votes,
		publisher: publisher,
		clock:     clock,
	}
}

// CreateGame creates a new game in the waiting state.
func (a *App) CreateGame(ctx context.Context, name string, description *string) (*models.Game, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("game name is required: %w", apperr.ErrInvalidInput)
	}
	game, err := a.repo.CreateGame(ctx, uuid.New(), strings.TrimSpace(name), description)
	if err != nil {
		return nil, err
	}
	log.Info().Str("game_id", game.ID.String()).Str("name", game.Name).Msg("game created")
	return game, nil
}

// GetGame retrieves a game by ID.
func (a *App) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	return a.repo.GetGame(ctx, id)
}

// GetActiveGame retrieves the currently active game.
func (a *App) GetActiveGame(ctx context.Context) (*models.Game, error) {
	return a.repo.GetActiveGame(ctx)
}

// ListGames returns all games, newest first.
func (a *App) ListGames(ctx context.Context) ([]models.Game, error) {
	return a.repo.ListGames(ctx)
}

// ActivateGame makes the given game the single active one.
func (a *App) ActivateGame(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.SetActiveGame(ctx, id); err != nil {
		return err
	}
	log.Info().Str("game_id", id.String()).Msg("game activated")
	return nil
}

// SetActiveQuestion makes the given question the game's current one. It emits
// an advisory loading signal first, populates the question's predefined
// options idempotently, then announces the change with the full question view
// so clients can render without a follow-up fetch.
func (a *App) SetActiveQuestion(ctx context.Context, gameID, questionID uuid.UUID) (*events.QuestionView, error) {
	question, err := a.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.GameID != gameID {
		return nil, fmt.Errorf("question belongs to another game: %w", apperr.ErrInvalidInput)
	}

	a.publish(ctx, gameID, events.KindLoadingQuestion, events.LoadingQuestionPayload{StartedAt: a.clock.Now().UTC()})

	if err := a.options.Populate(ctx, questionID, question.Options); err != nil {
		return nil, fmt.Errorf("failed to populate options: %w", err)
	}

	if err := a.repo.SetCurrentQuestion(ctx, gameID, &questionID); err != nil {
		return nil, err
	}
	if err := a.repo.UpdateGameStatus(ctx, gameID, models.GameStatusActive); err != nil {
		return nil, err
	}

	options, err := a.options.GetOptionsByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}
	view := events.NewQuestionView(question, options)

	a.publish(ctx, gameID, events.KindQuestionChanged, events.QuestionChangedPayload{
		Question:  view,
		ChangedAt: a.clock.Now().UTC(),
	})

	log.Info().
		Str("game_id", gameID.String()).
		Str("question_id", questionID.String()).
		Int("position", question.Position).
		Msg("active question set")
	return &view, nil
}

// AdvanceQuestion moves the game to the next question in display order,
// wrapping to the first after the last.
func (a *App) AdvanceQuestion(ctx context.Context, gameID uuid.UUID) (*events.QuestionView, error) {
	return a.step(ctx, gameID, 1)
}

// PreviousQuestion moves the game to the prior question in display order,
// wrapping to the last before the first.
func (a *App) PreviousQuestion(ctx context.Context, gameID uuid.UUID) (*events.QuestionView, error) {
	return a.step(ctx, gameID, -1)
}

func (a *App) step(ctx context.Context, gameID uuid.UUID, delta int) (*events.QuestionView, error) {
	game, err := a.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	questions, err := a.questions.GetQuestionsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("game has no questions: %w", apperr.ErrNotFound)
	}

	next := 0
	if game.CurrentQuestionID != nil {
		for i, q := range questions {
			if q.ID == *game.CurrentQuestionID {
				next = (i + delta + len(questions)) % len(questions)
				break
			}
		}
	} else if delta < 0 {
		next = len(questions) - 1
	}
	return a.SetActiveQuestion(ctx, gameID, questions[next].ID)
}

// ShowResults moves the game to its results phase.
func (a *App) ShowResults(ctx context.Context, gameID uuid.UUID) error {
	if err := a.repo.UpdateGameStatus(ctx, gameID, models.GameStatusResults); err != nil {
		return err
	}
	a.publish(ctx, gameID, events.KindResultsShown, events.ResultsShownPayload{})
	log.Info().Str("game_id", gameID.String()).Msg("results shown")
	return nil
}

// ResetVotes bulk-erases all answers and custom options for a game while
// keeping the questions themselves. If a question is currently live, the
// now-empty tally is broadcast so clients drop their stale counts.
func (a *App) ResetVotes(ctx context.Context, gameID uuid.UUID) error {
	game, err := a.repo.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	deleted, err := a.votes.ResetByGame(ctx, gameID)
	if err != nil {
		return err
	}
	if _, err := a.options.ResetCustomByGame(ctx, gameID); err != nil {
		return err
	}

	if game.CurrentQuestionID != nil {
		tally, err := a.votes.Tally(ctx, *game.CurrentQuestionID)
		if err != nil {
			log.Error().Err(err).Str("game_id", gameID.String()).Msg("failed to tally after vote reset")
		} else {
			a.votes.PublishTally(ctx, gameID, tally)
		}
	}

	log.Info().Str("game_id", gameID.String()).Int("deleted", deleted).Msg("votes reset")
	return nil
}

// ResetGame returns a game to its pristine waiting state: answers and custom
// options erased, current question cleared, all clients told to start over.
func (a *App) ResetGame(ctx context.Context, gameID uuid.UUID) error {
	if _, err := a.votes.ResetByGame(ctx, gameID); err != nil {
		return err
	}
	if _, err := a.options.ResetCustomByGame(ctx, gameID); err != nil {
		return err
	}
	if err := a.repo.SetCurrentQuestion(ctx, gameID, nil); err != nil {
		return err
	}
	if err := a.repo.UpdateGameStatus(ctx, gameID, models.GameStatusWaiting); err != nil {
		return err
	}
	a.publish(ctx, gameID, events.KindGameReset, events.GameResetPayload{})
	log.Info().Str("game_id", gameID.String()).Msg("game reset")
	return nil
}

func (a *App) publish(ctx context.Context, gameID uuid.UUID, kind events.Kind, payload interface{}) {
	event, err := bus.NewEvent(gameID, kind, a.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("failed to build game event")
		return
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).
			Str("kind", string(kind)).
			Str("game_id", gameID.String()).
			Msg("failed to publish game event")
	}
}
