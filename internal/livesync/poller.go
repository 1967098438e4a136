package livesync

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/events"
)

// Fetcher is the read side of the HTTP surface the poller needs.
type Fetcher interface {
	FetchCurrentQuestion(ctx context.Context) (*events.CurrentQuestionResponse, error)
	FetchTally(ctx context.Context, questionID string) (*events.TallyResponse, error)
}

// Poller periodically refreshes the reducer from the HTTP surface. It is the
// always-on fallback transport: while the socket is healthy it idles at a
// slow cadence, and when the socket drops it tightens to keep the client
// converging.
type Poller struct {
	fetcher   Fetcher
	reducer   *Reducer
	clock     clockwork.Clock
	short     time.Duration
	long      time.Duration
	connected atomic.Bool
}

// NewPoller creates a poller with the given fast (disconnected) and slow
// (socket-healthy) intervals.
func NewPoller(fetcher Fetcher, reducer *Reducer, clock clockwork.Clock, short, long time.Duration) *Poller {
	return &Poller{
		fetcher: fetcher,
		reducer: reducer,
		clock:   clock,
		short:   short,
		long:    long,
	}
}

// SetConnected switches between the slow and fast cadence.
func (p *Poller) SetConnected(connected bool) {
	p.connected.Store(connected)
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	for {
		p.pollOnce(ctx)

		interval := p.short
		if p.connected.Load() {
			interval = p.long
		}
		timer := p.clock.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	resp, err := p.fetcher.FetchCurrentQuestion(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("question poll failed")
		return
	}
	p.reducer.ApplyQuestionPoll(resp)

	state := p.reducer.State()
	if state.Phase != PhaseActiveQuestion || state.Question == nil {
		return
	}
	tally, err := p.fetcher.FetchTally(ctx, state.Question.ID)
	if err != nil {
		log.Warn().Err(err).Str("question_id", state.Question.ID).Msg("tally poll failed")
		return
	}
	p.reducer.ApplyTallyPoll(tally)
}
