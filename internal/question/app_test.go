package question

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/partytrivia/internal/apperr"
	"github.com/mcdev12/partytrivia/internal/models"
)

type mockQuestionRepository struct {
	created []CreateQuestionRequest
}

func (m *mockQuestionRepository) CreateQuestion(ctx context.Context, req CreateQuestionRequest) (*models.Question, error) {
	m.created = append(m.created, req)
	return &models.Question{
		ID: req.ID, GameID: req.GameID, Kind: req.Kind, Prompt: req.Prompt,
		Options: req.Options, CorrectAnswer: req.CorrectAnswer,
		NoCorrectAnswer: req.NoCorrectAnswer, AllowCustomAnswers: req.AllowCustomAnswers,
	}, nil
}

func (m *mockQuestionRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return nil, nil
}

func (m *mockQuestionRepository) GetQuestionsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Question, error) {
	return nil, nil
}

func (m *mockQuestionRepository) UpdateQuestion(ctx context.Context, id uuid.UUID, req UpdateQuestionRequest) (*models.Question, error) {
	return &models.Question{ID: id, Kind: req.Kind, Prompt: req.Prompt, Options: req.Options}, nil
}

func (m *mockQuestionRepository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return nil
}

func validCreateRequest() CreateQuestionRequest {
	correct := "Paris"
	return CreateQuestionRequest{
		GameID:        uuid.New(),
		Prompt:        "Capital of France?",
		Options:       []string{"Paris", "Lyon"},
		CorrectAnswer: &correct,
	}
}

func TestCreateQuestion_Valid(t *testing.T) {
	repo := &mockQuestionRepository{}
	app := NewApp(repo)

	q, err := app.CreateQuestion(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, models.QuestionKindText, q.Kind, "kind defaults to text")
	require.Len(t, repo.created, 1)
}

func TestCreateQuestion_RequiresPrompt(t *testing.T) {
	app := NewApp(&mockQuestionRepository{})
	req := validCreateRequest()
	req.Prompt = "  "

	_, err := app.CreateQuestion(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreateQuestion_RequiresTwoOptions(t *testing.T) {
	app := NewApp(&mockQuestionRepository{})
	req := validCreateRequest()
	req.Options = []string{"Paris"}

	_, err := app.CreateQuestion(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreateQuestion_RejectsBlankOption(t *testing.T) {
	app := NewApp(&mockQuestionRepository{})
	req := validCreateRequest()
	req.Options = []string{"Paris", " "}

	_, err := app.CreateQuestion(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreateQuestion_CorrectAnswerMustBeAnOption(t *testing.T) {
	app := NewApp(&mockQuestionRepository{})
	req := validCreateRequest()
	other := "Marseille"
	req.CorrectAnswer = &other

	_, err := app.CreateQuestion(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreateQuestion_OpinionNeedsNoCorrectAnswer(t *testing.T) {
	app := NewApp(&mockQuestionRepository{})
	req := validCreateRequest()
	req.CorrectAnswer = nil
	req.NoCorrectAnswer = true

	_, err := app.CreateQuestion(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateQuestion_MissingCorrectAnswer(t *testing.T) {
	app := NewApp(&mockQuestionRepository{})
	req := validCreateRequest()
	req.CorrectAnswer = nil

	_, err := app.CreateQuestion(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
