package game

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/partytrivia/internal/apperr"
	"github.com/mcdev12/partytrivia/internal/events"
	"github.com/mcdev12/partytrivia/internal/models"
)

type mockGameRepository struct {
	games map[uuid.UUID]*models.Game
}

func newMockGameRepository(games ...*models.Game) *mockGameRepository {
	m := &mockGameRepository{games: make(map[uuid.UUID]*models.Game)}
	for _, g := range games {
		m.games[g.ID] = g
	}
	return m
}

func (m *mockGameRepository) CreateGame(ctx context.Context, id uuid.UUID, name string, description *string) (*models.Game, error) {
	g := &models.Game{ID: id, Name: name, Description: description, Status: models.GameStatusWaiting}
	m.games[id] = g
	return g, nil
}

func (m *mockGameRepository) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("no game: %w", sql.ErrNoRows)
	}
	return g, nil
}

func (m *mockGameRepository) GetActiveGame(ctx context.Context) (*models.Game, error) {
	for _, g := range m.games {
		if g.IsActive {
			return g, nil
		}
	}
	return nil, fmt.Errorf("no active game: %w", sql.ErrNoRows)
}

func (m *mockGameRepository) ListGames(ctx context.Context) ([]models.Game, error) {
	var result []models.Game
	for _, g := range m.games {
		result = append(result, *g)
	}
	return result, nil
}

func (m *mockGameRepository) SetActiveGame(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.games[id]; !ok {
		return fmt.Errorf("no game: %w", sql.ErrNoRows)
	}
	for _, g := range m.games {
		g.IsActive = g.ID == id
	}
	return nil
}

func (m *mockGameRepository) UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	g, ok := m.games[id]
	if !ok {
		return fmt.Errorf("no game: %w", sql.ErrNoRows)
	}
	g.Status = status
	return nil
}

func (m *mockGameRepository) SetCurrentQuestion(ctx context.Context, id uuid.UUID, questionID *uuid.UUID) error {
	g, ok := m.games[id]
	if !ok {
		return fmt.Errorf("no game: %w", sql.ErrNoRows)
	}
	g.CurrentQuestionID = questionID
	return nil
}

type mockQuestionStore struct {
	questions []models.Question
}

func (m *mockQuestionStore) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	for i := range m.questions {
		if m.questions[i].ID == id {
			return &m.questions[i], nil
		}
	}
	return nil, fmt.Errorf("no question: %w", sql.ErrNoRows)
}

func (m *mockQuestionStore) GetQuestionsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Question, error) {
	var result []models.Question
	for _, q := range m.questions {
		if q.GameID == gameID {
			result = append(result, q)
		}
	}
	return result, nil
}

type mockOptionRegistry struct {
	populated  []uuid.UUID
	resetGames []uuid.UUID
	optionsByQ map[uuid.UUID][]models.AnswerOption
}

func (m *mockOptionRegistry) Populate(ctx context.Context, questionID uuid.UUID, predefined []string) error {
	m.populated = append(m.populated, questionID)
	if m.optionsByQ == nil {
		m.optionsByQ = make(map[uuid.UUID][]models.AnswerOption)
	}
	if len(m.optionsByQ[questionID]) == 0 {
		for _, text := range predefined {
			m.optionsByQ[questionID] = append(m.optionsByQ[questionID], models.AnswerOption{
				ID: uuid.New(), QuestionID: questionID, Text: text, Provenance: models.OptionProvenancePredefined,
			})
		}
	}
	return nil
}

func (m *mockOptionRegistry) GetOptionsByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.AnswerOption, error) {
	return m.optionsByQ[questionID], nil
}

func (m *mockOptionRegistry) ResetCustomByGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	m.resetGames = append(m.resetGames, gameID)
	return 0, nil
}

type mockVoteStore struct {
	resetGames []uuid.UUID
	tallies    []models.VoteTally
}

func (m *mockVoteStore) ResetByGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	m.resetGames = append(m.resetGames, gameID)
	return 3, nil
}

func (m *mockVoteStore) Tally(ctx context.Context, questionID uuid.UUID) (models.VoteTally, error) {
	return models.VoteTally{QuestionID: questionID, Counts: map[string]int{}}, nil
}

func (m *mockVoteStore) PublishTally(ctx context.Context, gameID uuid.UUID, tally models.VoteTally) {
	m.tallies = append(m.tallies, tally)
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) kinds() []events.Kind {
	var kinds []events.Kind
	for _, e := range m.published {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type fixture struct {
	app       *App
	repo      *mockGameRepository
	options   *mockOptionRegistry
	votes     *mockVoteStore
	publisher *mockPublisher

	game      *models.Game
	questions []models.Question
}

func newFixture(t *testing.T, questionCount int) *fixture {
	t.Helper()
	game := &models.Game{ID: uuid.New(), Name: "Trivia Night", Status: models.GameStatusWaiting, IsActive: true}

	var questions []models.Question
	for i := 0; i < questionCount; i++ {
		correct := "A"
		questions = append(questions, models.Question{
			ID:            uuid.New(),
			GameID:        game.ID,
			Kind:          models.QuestionKindText,
			Prompt:        fmt.Sprintf("Question %d", i+1),
			Options:       []string{"A", "B"},
			CorrectAnswer: &correct,
			Position:      i,
		})
	}

	repo := newMockGameRepository(game)
	options := &mockOptionRegistry{}
	votes := &mockVoteStore{}
	publisher := &mockPublisher{}
	app := NewApp(repo, &mockQuestionStore{questions: questions}, options, votes, publisher, clockwork.NewFakeClock())

	return &fixture{app: app, repo: repo, options: options, votes: votes, publisher: publisher, game: game, questions: questions}
}

func TestCreateGame_RequiresName(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.app.CreateGame(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSetActiveQuestion_PopulatesAndAnnounces(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	view, err := f.app.SetActiveQuestion(ctx, f.game.ID, f.questions[0].ID)
	require.NoError(t, err)

	require.NotNil(t, f.game.CurrentQuestionID)
	assert.Equal(t, f.questions[0].ID, *f.game.CurrentQuestionID)
	assert.Equal(t, models.GameStatusActive, f.game.Status)
	assert.Equal(t, []uuid.UUID{f.questions[0].ID}, f.options.populated)
	assert.Len(t, view.Options, 2)

	assert.Equal(t, []events.Kind{events.KindLoadingQuestion, events.KindQuestionChanged}, f.publisher.kinds())
}

func TestSetActiveQuestion_RejectsForeignQuestion(t *testing.T) {
	f := newFixture(t, 1)
	foreign := models.Question{ID: uuid.New(), GameID: uuid.New(), Prompt: "other", Options: []string{"A", "B"}}
	f.app.questions = &mockQuestionStore{questions: append(f.questions, foreign)}

	_, err := f.app.SetActiveQuestion(context.Background(), f.game.ID, foreign.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestAdvanceQuestion_StartsAtFirst(t *testing.T) {
	f := newFixture(t, 3)

	view, err := f.app.AdvanceQuestion(context.Background(), f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, f.questions[0].ID.String(), view.ID)
}

func TestAdvanceQuestion_WrapsAround(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	last := f.questions[2].ID
	f.game.CurrentQuestionID = &last

	view, err := f.app.AdvanceQuestion(ctx, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, f.questions[0].ID.String(), view.ID)
}

func TestPreviousQuestion_WrapsToLast(t *testing.T) {
	f := newFixture(t, 3)

	first := f.questions[0].ID
	f.game.CurrentQuestionID = &first

	view, err := f.app.PreviousQuestion(context.Background(), f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, f.questions[2].ID.String(), view.ID)
}

func TestAdvanceQuestion_NoQuestions(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.app.AdvanceQuestion(context.Background(), f.game.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestShowResults(t *testing.T) {
	f := newFixture(t, 1)

	require.NoError(t, f.app.ShowResults(context.Background(), f.game.ID))
	assert.Equal(t, models.GameStatusResults, f.game.Status)
	assert.Equal(t, []events.Kind{events.KindResultsShown}, f.publisher.kinds())
}

func TestResetVotes_ErasesVotesAndCustomOptionsOnly(t *testing.T) {
	f := newFixture(t, 2)
	current := f.questions[0].ID
	f.game.CurrentQuestionID = &current

	require.NoError(t, f.app.ResetVotes(context.Background(), f.game.ID))

	assert.Equal(t, []uuid.UUID{f.game.ID}, f.votes.resetGames)
	assert.Equal(t, []uuid.UUID{f.game.ID}, f.options.resetGames)
	// Questions and current pointer survive a vote reset.
	assert.Equal(t, &current, f.game.CurrentQuestionID)
	// The now-empty tally is pushed so clients drop stale counts.
	require.Len(t, f.votes.tallies, 1)
	assert.Equal(t, current, f.votes.tallies[0].QuestionID)
}

func TestResetGame_ReturnsToWaiting(t *testing.T) {
	f := newFixture(t, 2)
	current := f.questions[0].ID
	f.game.CurrentQuestionID = &current
	f.game.Status = models.GameStatusActive

	require.NoError(t, f.app.ResetGame(context.Background(), f.game.ID))

	assert.Nil(t, f.game.CurrentQuestionID)
	assert.Equal(t, models.GameStatusWaiting, f.game.Status)
	assert.Equal(t, []uuid.UUID{f.game.ID}, f.votes.resetGames)
	assert.Equal(t, []uuid.UUID{f.game.ID}, f.options.resetGames)
	assert.Equal(t, []events.Kind{events.KindGameReset}, f.publisher.kinds())
}
