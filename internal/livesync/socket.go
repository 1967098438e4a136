package livesync

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/events"
)

// Socket is the push transport: it holds a WebSocket to the gateway, feeds
// every received event into the reducer and tells the poller when to fall
// back. It reconnects forever with a fixed backoff.
type Socket struct {
	url     string
	reducer *Reducer
	poller  *Poller
	clock   clockwork.Clock
	dialer  *websocket.Dialer
	backoff time.Duration
}

// NewSocket creates a socket transport for the given ws:// URL (the session
// token goes in the URL's query string).
func NewSocket(url string, reducer *Reducer, poller *Poller, clock clockwork.Clock) *Socket {
	return &Socket{
		url:     url,
		reducer: reducer,
		poller:  poller,
		clock:   clock,
		dialer:  websocket.DefaultDialer,
		backoff: 2 * time.Second,
	}
}

// Run maintains the connection until the context is cancelled.
func (s *Socket) Run(ctx context.Context) {
	for {
		if err := s.runOnce(ctx); err != nil {
			log.Warn().Err(err).Msg("socket disconnected")
		}
		s.poller.SetConnected(false)

		timer := s.clock.NewTimer(s.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
	}
}

func (s *Socket) runOnce(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info().Str("url", s.url).Msg("socket connected")
	s.poller.SetConnected(true)

	// Close the connection when the context is cancelled so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var event events.Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.reducer.ApplyEvent(&event)
	}
}
