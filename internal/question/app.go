package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/apperr"
	"github.com/mcdev12/partytrivia/internal/models"
)

// QuestionRepository defines what the app layer needs from the repository.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, req CreateQuestionRequest) (*models.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	GetQuestionsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, req UpdateQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

// App handles question business logic.
type App struct {
	repo QuestionRepository
}

// NewApp creates a new question App.
func NewApp(repo QuestionRepository) *App {
	return &App{repo: repo}
}

// CreateQuestion creates a question after validation.
func (a *App) CreateQuestion(ctx context.Context, req CreateQuestionRequest) (*models.Question, error) {
	if err := validateQuestion(req.Prompt, req.Options, req.CorrectAnswer, req.NoCorrectAnswer); err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Kind == "" {
		req.Kind = models.QuestionKindText
	}

	q, err := a.repo.CreateQuestion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	log.Info().
		Str("question_id", q.ID.String()).
		Str("game_id", q.GameID.String()).
		Msg("question created")
	return q, nil
}

// GetQuestion retrieves a question by ID.
func (a *App) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q, err := a.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// GetQuestionsByGame lists a game's questions in display order.
func (a *App) GetQuestionsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Question, error) {
	qs, err := a.repo.GetQuestionsByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions by game: %w", err)
	}
	return qs, nil
}

// UpdateQuestion applies a host edit after validation.
func (a *App) UpdateQuestion(ctx context.Context, id uuid.UUID, req UpdateQuestionRequest) (*models.Question, error) {
	if err := validateQuestion(req.Prompt, req.Options, req.CorrectAnswer, req.NoCorrectAnswer); err != nil {
		return nil, err
	}

	q, err := a.repo.UpdateQuestion(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	log.Info().Str("question_id", q.ID.String()).Msg("question updated")
	return q, nil
}

// DeleteQuestion removes a question by explicit host action.
func (a *App) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	log.Info().Str("question_id", id.String()).Msg("question deleted")
	return nil
}

func validateQuestion(prompt string, options []string, correctAnswer *string, noCorrectAnswer bool) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is required: %w", apperr.ErrInvalidInput)
	}
	if len(options) < 2 {
		return fmt.Errorf("at least two options are required: %w", apperr.ErrInvalidInput)
	}
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("options must be non-empty: %w", apperr.ErrInvalidInput)
		}
	}
	if !noCorrectAnswer {
		if correctAnswer == nil {
			return fmt.Errorf("correct answer is required unless the question is opinion-only: %w", apperr.ErrInvalidInput)
		}
		found := false
		for _, opt := range options {
			if opt == *correctAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("correct answer must be one of the options: %w", apperr.ErrInvalidInput)
		}
	}
	return nil
}
