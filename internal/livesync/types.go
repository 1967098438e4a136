package livesync

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/partytrivia/internal/events"
)

// Phase is the client-side view of where the game is.
type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhaseActiveQuestion Phase = "active_question"
	PhaseResults        Phase = "results"
)

// State is a snapshot of everything a voting client renders. VoteCounts is
// keyed by option text; Selected holds the locally chosen option, which may
// be ahead of what the server has recorded.
type State struct {
	Phase      Phase
	Loading    bool
	Question   *events.QuestionView
	Selected   string
	Submitted  bool
	Correct    *bool
	TimeUp     bool
	VoteCounts map[string]int
	TotalVotes int
}

// SubmitFunc is invoked when the answer window closes with an option selected
// but not yet submitted; it should push that selection to the server.
type SubmitFunc func(questionID, optionText string)

// Config tunes the reducer.
type Config struct {
	AnswerWindow time.Duration
	Clock        clockwork.Clock
	AutoSubmit   SubmitFunc
}

// DefaultConfig returns the standard reducer configuration.
func DefaultConfig() Config {
	return Config{
		AnswerWindow: 30 * time.Second,
		Clock:        clockwork.NewRealClock(),
	}
}
