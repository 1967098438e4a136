package livesync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/partytrivia/internal/events"
)

var base = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

func makeEvent(t *testing.T, kind events.Kind, payload interface{}) *events.Event {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &events.Event{
		ID:        uuid.New().String(),
		GameID:    uuid.New().String(),
		Kind:      kind,
		Timestamp: base,
		Data:      data,
	}
}

func makeQuestion(id string) events.QuestionView {
	return events.QuestionView{
		ID:     id,
		Kind:   "text",
		Prompt: "Favorite color?",
		Options: []events.OptionView{
			{ID: uuid.New().String(), Text: "Red"},
			{ID: uuid.New().String(), Text: "Blue"},
		},
		AllowCustomAnswers: true,
	}
}

func questionChanged(t *testing.T, view events.QuestionView, ts time.Time) *events.Event {
	return makeEvent(t, events.KindQuestionChanged, events.QuestionChangedPayload{Question: view, ChangedAt: ts})
}

func tallyChanged(t *testing.T, questionID string, counts map[string]int, total int, ts time.Time) *events.Event {
	return makeEvent(t, events.KindVoteTallyChanged, events.VoteTallyChangedPayload{
		QuestionID: questionID, VoteCounts: counts, TotalVotes: total, UpdatedAt: ts, Source: "authoritative",
	})
}

func newTestReducer() *Reducer {
	return NewReducer(Config{AnswerWindow: 30 * time.Second, Clock: clockwork.NewFakeClock()})
}

func TestReducer_StartsWaiting(t *testing.T) {
	r := newTestReducer()
	state := r.State()
	assert.Equal(t, PhaseWaiting, state.Phase)
	assert.Nil(t, state.Question)
}

func TestReducer_QuestionChangedEntersActivePhase(t *testing.T) {
	r := newTestReducer()
	q := makeQuestion("q1")

	r.ApplyEvent(questionChanged(t, q, base))

	state := r.State()
	assert.Equal(t, PhaseActiveQuestion, state.Phase)
	require.NotNil(t, state.Question)
	assert.Equal(t, "q1", state.Question.ID)
	assert.Equal(t, map[string]int{"Red": 0, "Blue": 0}, state.VoteCounts)
}

func TestReducer_StaleQuestionUpdateIsDiscarded(t *testing.T) {
	r := newTestReducer()

	r.ApplyEvent(questionChanged(t, makeQuestion("q2"), base.Add(2*time.Second)))
	// A delayed echo of the earlier question arrives afterwards.
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base.Add(time.Second)))

	assert.Equal(t, "q2", r.State().Question.ID)
}

func TestReducer_DuplicateFromSecondTransportIsDiscarded(t *testing.T) {
	r := newTestReducer()
	q := makeQuestion("q1")

	r.ApplyEvent(questionChanged(t, q, base))
	r.SelectOption("Red")
	// The same update arrives again via the other transport.
	r.ApplyEvent(questionChanged(t, q, base))

	state := r.State()
	assert.Equal(t, "Red", state.Selected, "duplicate must not clear local selection")
	assert.Equal(t, 1, state.VoteCounts["Red"])
}

func TestReducer_TallyAppliesForCurrentQuestion(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))

	r.ApplyEvent(tallyChanged(t, "q1", map[string]int{"Red": 3, "Blue": 1}, 4, base.Add(time.Second)))

	state := r.State()
	assert.Equal(t, 3, state.VoteCounts["Red"])
	assert.Equal(t, 4, state.TotalVotes)
}

func TestReducer_OutOfOrderTallyIsDiscarded(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))

	r.ApplyEvent(tallyChanged(t, "q1", map[string]int{"Red": 5, "Blue": 2}, 7, base.Add(3*time.Second)))
	r.ApplyEvent(tallyChanged(t, "q1", map[string]int{"Red": 1, "Blue": 0}, 1, base.Add(time.Second)))

	state := r.State()
	assert.Equal(t, 5, state.VoteCounts["Red"])
	assert.Equal(t, 7, state.TotalVotes)
}

func TestReducer_TallyForOtherQuestionIsIgnored(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))

	r.ApplyEvent(tallyChanged(t, "q9", map[string]int{"Red": 9}, 9, base.Add(time.Second)))

	assert.Equal(t, 0, r.State().TotalVotes)
}

func TestReducer_StaleTallyGateResetsOnQuestionChange(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	r.ApplyEvent(tallyChanged(t, "q1", map[string]int{"Red": 5, "Blue": 0}, 5, base.Add(10*time.Second)))

	r.ApplyEvent(questionChanged(t, makeQuestion("q2"), base.Add(11*time.Second)))
	// First tally of the new question carries an earlier server timestamp
	// than the last tally of the old one; it must still apply.
	r.ApplyEvent(tallyChanged(t, "q2", map[string]int{"Red": 1, "Blue": 0}, 1, base.Add(2*time.Second)))

	assert.Equal(t, 1, r.State().TotalVotes)
}

func TestReducer_CustomAnswerAppendsOption(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))

	added := events.OptionView{ID: uuid.New().String(), Text: "Green", Custom: true}
	r.ApplyEvent(makeEvent(t, events.KindCustomAnswerAdded, events.CustomAnswerAddedPayload{
		QuestionID: "q1", Option: added, AddedAt: base.Add(time.Second),
	}))

	state := r.State()
	require.Len(t, state.Question.Options, 3)
	assert.Equal(t, 0, state.VoteCounts["Green"])
}

func TestReducer_DuplicateCustomAnswerIsNotAppendedTwice(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))

	added := events.OptionView{ID: uuid.New().String(), Text: "Green", Custom: true}
	r.ApplyEvent(makeEvent(t, events.KindCustomAnswerAdded, events.CustomAnswerAddedPayload{
		QuestionID: "q1", Option: added, AddedAt: base.Add(time.Second),
	}))
	r.ApplyEvent(makeEvent(t, events.KindCustomAnswerAdded, events.CustomAnswerAddedPayload{
		QuestionID: "q1", Option: added, AddedAt: base.Add(2 * time.Second),
	}))

	assert.Len(t, r.State().Question.Options, 3)
}

func TestReducer_SelectOptionShiftsTallyOptimistically(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	r.ApplyEvent(tallyChanged(t, "q1", map[string]int{"Red": 2, "Blue": 1}, 3, base.Add(time.Second)))

	require.True(t, r.SelectOption("Red"))

	state := r.State()
	assert.Equal(t, 3, state.VoteCounts["Red"])
	assert.Equal(t, 4, state.TotalVotes)

	// Switching moves the optimistic vote.
	require.True(t, r.SelectOption("Blue"))
	state = r.State()
	assert.Equal(t, 2, state.VoteCounts["Red"])
	assert.Equal(t, 2, state.VoteCounts["Blue"])
	assert.Equal(t, 4, state.TotalVotes)
}

func TestReducer_OptimisticShiftIsNeverRolledBack(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	r.SelectOption("Red")

	// The next authoritative tally simply overwrites; no rollback happens in
	// between, so the counts converge to the server truth.
	r.ApplyEvent(tallyChanged(t, "q1", map[string]int{"Red": 1, "Blue": 0}, 1, base.Add(time.Second)))

	state := r.State()
	assert.Equal(t, 1, state.VoteCounts["Red"])
	assert.Equal(t, 1, state.TotalVotes)
	assert.Equal(t, "Red", state.Selected)
}

func TestReducer_ResultsShown(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))

	r.ApplyEvent(makeEvent(t, events.KindResultsShown, events.ResultsShownPayload{}))

	assert.Equal(t, PhaseResults, r.State().Phase)
}

func TestReducer_GameResetClearsEverything(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	r.SelectOption("Red")

	r.ApplyEvent(makeEvent(t, events.KindGameReset, events.GameResetPayload{}))

	state := r.State()
	assert.Equal(t, PhaseWaiting, state.Phase)
	assert.Nil(t, state.Question)
	assert.Empty(t, state.Selected)
	assert.Empty(t, state.VoteCounts)

	// After a reset the same question may be shown again with a fresh stream.
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	assert.Equal(t, PhaseActiveQuestion, r.State().Phase)
}

func TestReducer_PollWaitingResetsState(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))

	r.ApplyQuestionPoll(&events.CurrentQuestionResponse{Waiting: true, GameStatus: "waiting", Timestamp: base.Add(time.Second)})

	assert.Equal(t, PhaseWaiting, r.State().Phase)
}

func TestReducer_StaleWaitingPollIsDiscarded(t *testing.T) {
	r := newTestReducer()

	// The socket delivers the question change; a poll response generated
	// before that transition arrives late via the slower transport.
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	r.SelectOption("Red")
	r.ApplyQuestionPoll(&events.CurrentQuestionResponse{Waiting: true, GameStatus: "waiting", Timestamp: base.Add(-2 * time.Second)})

	state := r.State()
	assert.Equal(t, PhaseActiveQuestion, state.Phase)
	require.NotNil(t, state.Question)
	assert.Equal(t, "q1", state.Question.ID)
	assert.Equal(t, "Red", state.Selected, "late waiting echo must not drop the optimistic selection")

	// A genuinely newer waiting response still resets.
	r.ApplyQuestionPoll(&events.CurrentQuestionResponse{Waiting: true, GameStatus: "waiting", Timestamp: base.Add(2 * time.Second)})
	assert.Equal(t, PhaseWaiting, r.State().Phase)
}

func TestReducer_PollAdoptsRecordedAnswerForNewQuestion(t *testing.T) {
	r := newTestReducer()
	q := makeQuestion("q1")

	r.ApplyQuestionPoll(&events.CurrentQuestionResponse{
		GameStatus:     "active",
		Question:       &q,
		Answered:       true,
		SelectedAnswer: "Blue",
		Timestamp:      base,
	})

	state := r.State()
	assert.Equal(t, PhaseActiveQuestion, state.Phase)
	assert.True(t, state.Submitted)
	assert.Equal(t, "Blue", state.Selected)
}

func TestReducer_LoadingIsAdvisoryOnly(t *testing.T) {
	r := newTestReducer()
	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	r.SelectOption("Red")

	r.ApplyEvent(makeEvent(t, events.KindLoadingQuestion, events.LoadingQuestionPayload{StartedAt: base.Add(time.Second)}))

	state := r.State()
	assert.True(t, state.Loading)
	assert.Equal(t, "q1", state.Question.ID, "loading signal must not drop the question")
	assert.Equal(t, "Red", state.Selected)
}

func TestReducer_TimeUpAutoSubmitsSelection(t *testing.T) {
	clock := clockwork.NewFakeClock()
	submitted := make(chan string, 1)
	r := NewReducer(Config{
		AnswerWindow: 30 * time.Second,
		Clock:        clock,
		AutoSubmit: func(questionID, optionText string) {
			submitted <- questionID + ":" + optionText
		},
	})

	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	r.SelectOption("Red")

	clock.BlockUntil(1)
	clock.Advance(30 * time.Second)

	select {
	case got := <-submitted:
		assert.Equal(t, "q1:Red", got)
	case <-time.After(time.Second):
		t.Fatal("expected auto-submit at time up")
	}
	assert.True(t, r.State().TimeUp)
}

func TestReducer_TimeUpWithoutSelectionDoesNothing(t *testing.T) {
	clock := clockwork.NewFakeClock()
	called := false
	r := NewReducer(Config{
		AnswerWindow: 30 * time.Second,
		Clock:        clock,
		AutoSubmit:   func(string, string) { called = true },
	})

	r.ApplyEvent(questionChanged(t, makeQuestion("q1"), base))
	clock.BlockUntil(1)
	clock.Advance(30 * time.Second)

	// Selection after the window closed is rejected.
	assert.Eventually(t, func() bool { return r.State().TimeUp }, time.Second, 10*time.Millisecond)
	assert.False(t, r.SelectOption("Red"))
	assert.False(t, called)
}
