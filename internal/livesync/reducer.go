package livesync

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/events"
)

// Update categories are gated independently: a stale tally must not block a
// fresh question change and vice versa.
type category int

const (
	catQuestion category = iota
	catTally
	catOption
)

// updateKey orders inbound updates. An update is applied only when its key is
// strictly newer than the last applied one for its category; anything else is
// a duplicate or out-of-order echo from one of the two transports.
type updateKey struct {
	questionID string
	ts         time.Time
}

func (k updateKey) newerThan(prev updateKey) bool {
	return prev.ts.IsZero() || k.ts.After(prev.ts)
}

// Reducer folds updates from the WebSocket and polling transports into a
// single client state. Both transports feed the same code paths, so whichever
// arrives first wins and the echo from the other is discarded.
type Reducer struct {
	mu          sync.Mutex
	state       State
	lastApplied map[category]updateKey
	cfg         Config

	generation int
	cancelTick chan struct{}
}

// NewReducer creates a reducer in the waiting phase.
func NewReducer(cfg Config) *Reducer {
	if cfg.Clock == nil {
		cfg.Clock = DefaultConfig().Clock
	}
	if cfg.AnswerWindow <= 0 {
		cfg.AnswerWindow = DefaultConfig().AnswerWindow
	}
	return &Reducer{
		state:       State{Phase: PhaseWaiting, VoteCounts: make(map[string]int)},
		lastApplied: make(map[category]updateKey),
		cfg:         cfg,
	}
}

// State returns a copy of the current client state.
func (r *Reducer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Reducer) snapshot() State {
	s := r.state
	s.VoteCounts = make(map[string]int, len(r.state.VoteCounts))
	for k, v := range r.state.VoteCounts {
		s.VoteCounts[k] = v
	}
	if r.state.Question != nil {
		q := *r.state.Question
		q.Options = append([]events.OptionView(nil), r.state.Question.Options...)
		s.Question = &q
	}
	if r.state.Correct != nil {
		c := *r.state.Correct
		s.Correct = &c
	}
	return s
}

// ApplyEvent folds one pushed event into the state.
func (r *Reducer) ApplyEvent(event *events.Event) {
	payload, err := events.ParsePayload(event)
	if err != nil {
		log.Warn().Err(err).Str("type", string(event.Kind)).Msg("discarding malformed event")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch p := payload.(type) {
	case events.QuestionChangedPayload:
		r.applyQuestion(&p.Question, p.ChangedAt)
	case events.VoteTallyChangedPayload:
		r.applyTally(p.QuestionID, p.VoteCounts, p.TotalVotes, p.UpdatedAt)
	case events.CustomAnswerAddedPayload:
		r.applyOption(p.QuestionID, p.Option, p.AddedAt)
	case events.ResultsShownPayload:
		r.state.Phase = PhaseResults
		r.state.Loading = false
		r.stopCountdown()
	case events.GameResetPayload:
		r.resetLocked()
	case events.LoadingQuestionPayload:
		// Advisory only: show a spinner, change nothing else.
		r.state.Loading = true
	}
}

// ApplyQuestionPoll folds a poll response into the state. The poll is the
// fallback transport, so it runs through the same staleness gate as pushed
// events.
func (r *Reducer) ApplyQuestionPoll(resp *events.CurrentQuestionResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch resp.GameStatus {
	case "results":
		r.state.Phase = PhaseResults
		r.state.Loading = false
		r.stopCountdown()
		return
	case "waiting", "":
		if resp.Waiting || resp.Question == nil {
			// A waiting response stamped before the applied question change
			// is an out-of-order echo, not a transition back to waiting.
			key := updateKey{ts: resp.Timestamp}
			if !key.newerThan(r.lastApplied[catQuestion]) {
				return
			}
			r.resetLocked()
			return
		}
	}
	if resp.Question == nil {
		return
	}

	fresh := r.state.Question == nil || r.state.Question.ID != resp.Question.ID
	r.applyQuestion(resp.Question, resp.Timestamp)
	if fresh && r.state.Question != nil && r.state.Question.ID == resp.Question.ID && resp.Answered {
		// Adopt the server-recorded answer only for a newly seen question;
		// for the current one the local optimistic selection wins.
		r.state.Selected = resp.SelectedAnswer
		r.state.Submitted = true
	}
}

// ApplyTallyPoll folds a tally poll response into the state.
func (r *Reducer) ApplyTallyPoll(resp *events.TallyResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyTally(resp.QuestionID, resp.VoteCounts, resp.TotalVotes, resp.Timestamp)
}

func (r *Reducer) applyQuestion(view *events.QuestionView, ts time.Time) {
	key := updateKey{questionID: view.ID, ts: ts}
	if !key.newerThan(r.lastApplied[catQuestion]) {
		return
	}
	r.lastApplied[catQuestion] = key

	r.state.Loading = false
	r.state.Phase = PhaseActiveQuestion

	if r.state.Question != nil && r.state.Question.ID == view.ID {
		// Same question, refreshed shape (new custom options and the like).
		// Local selection and submission survive.
		r.state.Question = view
		r.ensureCounts(view)
		return
	}

	// A question change opens fresh tally and option streams.
	delete(r.lastApplied, catTally)
	delete(r.lastApplied, catOption)

	r.state.Question = view
	r.state.Selected = ""
	r.state.Submitted = false
	r.state.Correct = nil
	r.state.TimeUp = false
	r.state.VoteCounts = make(map[string]int, len(view.Options))
	r.state.TotalVotes = 0
	r.ensureCounts(view)
	r.startCountdown(view.ID)
}

func (r *Reducer) applyTally(questionID string, counts map[string]int, total int, ts time.Time) {
	if r.state.Question == nil || r.state.Question.ID != questionID {
		return
	}
	key := updateKey{questionID: questionID, ts: ts}
	if !key.newerThan(r.lastApplied[catTally]) {
		return
	}
	r.lastApplied[catTally] = key

	merged := make(map[string]int, len(counts))
	for text, count := range counts {
		merged[text] = count
	}
	r.state.VoteCounts = merged
	r.state.TotalVotes = total
	r.ensureCounts(r.state.Question)
}

func (r *Reducer) applyOption(questionID string, option events.OptionView, ts time.Time) {
	if r.state.Question == nil || r.state.Question.ID != questionID {
		return
	}
	key := updateKey{questionID: questionID, ts: ts}
	if !key.newerThan(r.lastApplied[catOption]) {
		return
	}
	r.lastApplied[catOption] = key

	for _, existing := range r.state.Question.Options {
		if existing.ID == option.ID || strings.EqualFold(strings.TrimSpace(existing.Text), strings.TrimSpace(option.Text)) {
			return
		}
	}
	r.state.Question.Options = append(r.state.Question.Options, option)
	if _, ok := r.state.VoteCounts[option.Text]; !ok {
		r.state.VoteCounts[option.Text] = 0
	}
}

// ensureCounts zero-fills counts for every visible option so renderers always
// see the full option set.
func (r *Reducer) ensureCounts(view *events.QuestionView) {
	for _, opt := range view.Options {
		if _, ok := r.state.VoteCounts[opt.Text]; !ok {
			r.state.VoteCounts[opt.Text] = 0
		}
	}
}

// SelectOption applies a local selection optimistically: the visible tally
// shifts immediately and is never rolled back, the next authoritative tally
// simply overwrites it. Returns false when voting is closed.
func (r *Reducer) SelectOption(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Phase != PhaseActiveQuestion || r.state.TimeUp || r.state.Question == nil {
		return false
	}
	if r.state.Selected == text {
		return true
	}
	if prev := r.state.Selected; prev != "" {
		if r.state.VoteCounts[prev] > 0 {
			r.state.VoteCounts[prev]--
			r.state.TotalVotes--
		}
	}
	r.state.VoteCounts[text]++
	r.state.TotalVotes++
	r.state.Selected = text
	return true
}

// MarkSubmitted records the server's verdict for the submitted answer.
func (r *Reducer) MarkSubmitted(correct bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Submitted = true
	r.state.Correct = &correct
}

// Reset returns the reducer to the waiting phase and clears all per-question
// state, including the staleness gates.
func (r *Reducer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Reducer) resetLocked() {
	r.stopCountdown()
	r.state = State{Phase: PhaseWaiting, VoteCounts: make(map[string]int)}
	r.lastApplied = make(map[category]updateKey)
}

// startCountdown arms the local answer window for a newly shown question.
// When it expires with a selection still unsubmitted, the selection is pushed
// via the configured auto-submit hook.
func (r *Reducer) startCountdown(questionID string) {
	r.stopCountdown()
	r.generation++
	gen := r.generation
	cancel := make(chan struct{})
	r.cancelTick = cancel

	go func() {
		timer := r.cfg.Clock.NewTimer(r.cfg.AnswerWindow)
		defer timer.Stop()
		select {
		case <-cancel:
		case <-timer.Chan():
			r.expireWindow(gen, questionID)
		}
	}()
}

func (r *Reducer) stopCountdown() {
	if r.cancelTick != nil {
		close(r.cancelTick)
		r.cancelTick = nil
	}
}

func (r *Reducer) expireWindow(gen int, questionID string) {
	r.mu.Lock()
	if gen != r.generation || r.state.Question == nil || r.state.Question.ID != questionID {
		r.mu.Unlock()
		return
	}
	r.state.TimeUp = true
	selected := r.state.Selected
	submitted := r.state.Submitted
	r.mu.Unlock()

	if selected != "" && !submitted && r.cfg.AutoSubmit != nil {
		log.Debug().Str("question_id", questionID).Str("option", selected).Msg("auto-submitting selection at time up")
		r.cfg.AutoSubmit(questionID, selected)
	}
}
