package answeroption

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/partytrivia/internal/apperr"
	"github.com/mcdev12/partytrivia/internal/events"
	"github.com/mcdev12/partytrivia/internal/models"
	"github.com/mcdev12/partytrivia/internal/vote"
)

type mockOptionRepository struct {
	options []models.AnswerOption

	insertedPredefined [][]string
	insertedCustom     []models.AnswerOption
}

func (m *mockOptionRepository) CountOptionsByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	count := 0
	for _, opt := range m.options {
		if opt.QuestionID == questionID {
			count++
		}
	}
	return count, nil
}

func (m *mockOptionRepository) InsertPredefinedOptions(ctx context.Context, questionID uuid.UUID, texts []string) error {
	m.insertedPredefined = append(m.insertedPredefined, texts)
	for _, text := range texts {
		m.options = append(m.options, models.AnswerOption{
			ID: uuid.New(), QuestionID: questionID, Text: text, Provenance: models.OptionProvenancePredefined,
		})
	}
	return nil
}

func (m *mockOptionRepository) InsertCustomOption(ctx context.Context, id, questionID uuid.UUID, text string, contributorName *string) (*models.AnswerOption, error) {
	opt := models.AnswerOption{
		ID: id, QuestionID: questionID, Text: text,
		Provenance: models.OptionProvenanceCustom, ContributorName: contributorName,
	}
	m.options = append(m.options, opt)
	m.insertedCustom = append(m.insertedCustom, opt)
	return &opt, nil
}

func (m *mockOptionRepository) OptionTextExists(ctx context.Context, questionID uuid.UUID, text string) (bool, error) {
	for _, opt := range m.options {
		if opt.QuestionID == questionID && strings.EqualFold(strings.TrimSpace(opt.Text), strings.TrimSpace(text)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOptionRepository) GetOptionByText(ctx context.Context, questionID uuid.UUID, text string) (*models.AnswerOption, error) {
	for _, opt := range m.options {
		if opt.QuestionID == questionID && strings.EqualFold(strings.TrimSpace(opt.Text), strings.TrimSpace(text)) {
			o := opt
			return &o, nil
		}
	}
	return nil, fmt.Errorf("no option: %w", sql.ErrNoRows)
}

func (m *mockOptionRepository) GetOptionsByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.AnswerOption, error) {
	var result []models.AnswerOption
	for _, opt := range m.options {
		if opt.QuestionID == questionID {
			result = append(result, opt)
		}
	}
	return result, nil
}

func (m *mockOptionRepository) DeleteCustomOptionsByGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	kept := m.options[:0]
	deleted := 0
	for _, opt := range m.options {
		if opt.Provenance == models.OptionProvenanceCustom {
			deleted++
			continue
		}
		kept = append(kept, opt)
	}
	m.options = kept
	return deleted, nil
}

func (m *mockOptionRepository) DeleteCustomOptionsByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	kept := m.options[:0]
	deleted := 0
	for _, opt := range m.options {
		if opt.Provenance == models.OptionProvenanceCustom && opt.QuestionID == questionID {
			deleted++
			continue
		}
		kept = append(kept, opt)
	}
	m.options = kept
	return deleted, nil
}

type mockQuestionStore struct {
	question *models.Question
}

func (m *mockQuestionStore) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	if m.question == nil || m.question.ID != id {
		return nil, fmt.Errorf("no question: %w", sql.ErrNoRows)
	}
	return m.question, nil
}

type mockParticipantStore struct {
	participant *models.Participant
}

func (m *mockParticipantStore) GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	if m.participant == nil || m.participant.ID != id {
		return nil, fmt.Errorf("no participant: %w", sql.ErrNoRows)
	}
	return m.participant, nil
}

type mockVoteSubmitter struct {
	submitted []vote.SubmitRequest
	result    models.SubmitResult
}

func (m *mockVoteSubmitter) Submit(ctx context.Context, req vote.SubmitRequest) (models.SubmitResult, error) {
	m.submitted = append(m.submitted, req)
	return m.result, nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

type stubLimiter struct {
	allow bool
}

func (l *stubLimiter) Allow(key string) bool { return l.allow }

type fixture struct {
	app       *App
	repo      *mockOptionRepository
	votes     *mockVoteSubmitter
	publisher *mockPublisher
	limiter   *stubLimiter

	questionID  uuid.UUID
	participant *models.Participant
}

func newFixture(t *testing.T, allowCustom bool) *fixture {
	t.Helper()
	questionID := uuid.New()
	question := &models.Question{
		ID:                 questionID,
		GameID:             uuid.New(),
		Kind:               models.QuestionKindText,
		Prompt:             "Best pizza topping?",
		Options:            []string{"Pepperoni", "Mushroom"},
		NoCorrectAnswer:    true,
		AllowCustomAnswers: allowCustom,
	}
	participant := &models.Participant{ID: uuid.New(), Name: "Sam"}

	repo := &mockOptionRepository{}
	votes := &mockVoteSubmitter{result: models.SubmitResult{Accepted: true, Correct: true}}
	publisher := &mockPublisher{}
	limiter := &stubLimiter{allow: true}
	app := NewApp(repo,
		&mockQuestionStore{question: question},
		&mockParticipantStore{participant: participant},
		votes, publisher, limiter, clockwork.NewFakeClock())

	return &fixture{
		app:         app,
		repo:        repo,
		votes:       votes,
		publisher:   publisher,
		limiter:     limiter,
		questionID:  questionID,
		participant: participant,
	}
}

func TestPopulate_InsertsPredefinedOptions(t *testing.T) {
	f := newFixture(t, true)

	err := f.app.Populate(context.Background(), f.questionID, []string{"Pepperoni", "Mushroom"})
	require.NoError(t, err)

	require.Len(t, f.repo.insertedPredefined, 1)
	assert.Equal(t, []string{"Pepperoni", "Mushroom"}, f.repo.insertedPredefined[0])
}

func TestPopulate_IsIdempotent(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.app.Populate(ctx, f.questionID, []string{"Pepperoni", "Mushroom"}))
	require.NoError(t, f.app.Populate(ctx, f.questionID, []string{"Pepperoni", "Mushroom"}))

	assert.Len(t, f.repo.insertedPredefined, 1, "second populate must be a no-op")
}

func TestPopulate_KeepsCustomOptionsOnRepopulate(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.app.Populate(ctx, f.questionID, []string{"Pepperoni", "Mushroom"}))
	_, err := f.app.AddCustom(ctx, f.questionID, f.participant.ID, "Pineapple")
	require.NoError(t, err)

	require.NoError(t, f.app.Populate(ctx, f.questionID, []string{"Pepperoni", "Mushroom"}))

	options, err := f.app.GetOptionsByQuestion(ctx, f.questionID)
	require.NoError(t, err)
	assert.Len(t, options, 3)
}

func TestAddCustom_InsertsTrimmedAndVotes(t *testing.T) {
	f := newFixture(t, true)

	result, err := f.app.AddCustom(context.Background(), f.questionID, f.participant.ID, "  Pineapple  ")
	require.NoError(t, err)

	require.NotNil(t, result.Option)
	assert.Equal(t, "Pineapple", result.Option.Text)
	assert.Equal(t, models.OptionProvenanceCustom, result.Option.Provenance)
	require.NotNil(t, result.Option.ContributorName)
	assert.Equal(t, "Sam", *result.Option.ContributorName)

	require.Len(t, f.votes.submitted, 1, "contributor's vote is recorded automatically")
	assert.Equal(t, "Pineapple", f.votes.submitted[0].OptionText)
	assert.Equal(t, f.participant.ID, f.votes.submitted[0].ParticipantID)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.KindCustomAnswerAdded, f.publisher.published[0].Kind)
}

func TestAddCustom_DuplicateTextIsRejectedCaseInsensitively(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.app.AddCustom(ctx, f.questionID, f.participant.ID, "Pineapple")
	require.NoError(t, err)

	_, err = f.app.AddCustom(ctx, f.questionID, f.participant.ID, "  pineapple ")
	assert.ErrorIs(t, err, apperr.ErrDuplicateOption)
	assert.Len(t, f.repo.insertedCustom, 1)
}

func TestAddCustom_DeniedWhenQuestionForbidsIt(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.app.AddCustom(context.Background(), f.questionID, f.participant.ID, "Pineapple")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	assert.Empty(t, f.repo.insertedCustom)
}

func TestAddCustom_EmptyTextIsRejected(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.app.AddCustom(context.Background(), f.questionID, f.participant.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestAddCustom_DebouncedInsideWindow(t *testing.T) {
	f := newFixture(t, true)
	f.limiter.allow = false

	result, err := f.app.AddCustom(context.Background(), f.questionID, f.participant.ID, "Pineapple")
	require.NoError(t, err)

	assert.True(t, result.Debounced)
	assert.Nil(t, result.Option)
	assert.Empty(t, f.repo.insertedCustom)
	assert.Empty(t, f.votes.submitted)
}
