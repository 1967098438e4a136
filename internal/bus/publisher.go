package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/events"
)

// Publisher publishes game events to the shared broadcast channel.
// Publishing is best-effort notification: the triggering mutation has already
// committed, so callers log and swallow publish errors instead of propagating
// them.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Config holds configuration for the NATS publisher.
type Config struct {
	URL           string
	SubjectPrefix string // e.g. "quiz.events"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default NATS publisher configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "quiz.events",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes events to core NATS subjects, one subject per event
// kind under a shared prefix.
type NATSPublisher struct {
	nc     *nats.Conn
	config Config
}

// NewNATSPublisher connects to NATS and returns a publisher.
func NewNATSPublisher(cfg Config) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSPublisher{nc: nc, config: cfg}, nil
}

// Publish sends the event envelope to its subject, fire-and-forget.
func (p *NATSPublisher) Publish(ctx context.Context, event events.Event) error {
	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, event.Kind)

	env := map[string]interface{}{
		"eventId":   event.ID,
		"eventType": string(event.Kind),
		"gameId":    event.GameID,
		"timestamp": event.Timestamp,
		"payload":   event.Data,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", event.ID).
		Str("game_id", event.GameID).
		Msg("published event")

	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// NewEvent builds an event envelope with a fresh id and the given payload.
func NewEvent(gameID uuid.UUID, kind events.Kind, now time.Time, payload interface{}) (events.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return events.Event{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return events.Event{
		ID:        uuid.New().String(),
		GameID:    gameID.String(),
		Kind:      kind,
		Timestamp: now,
		Data:      data,
	}, nil
}
