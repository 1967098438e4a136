package participant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/apperr"
	"github.com/mcdev12/partytrivia/internal/models"
)

// ParticipantRepository defines what the app layer needs from the repository.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, id uuid.UUID, name, token string) (*models.Participant, error)
	GetParticipantByToken(ctx context.Context, token string) (*models.Participant, error)
	GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error)
}

// App handles guest-session business logic.
type App struct {
	repo ParticipantRepository
}

// NewApp creates a new participant App.
func NewApp(repo ParticipantRepository) *App {
	return &App{repo: repo}
}

// Join creates a fresh guest identity with an opaque session token. Rejoining
// with the same display name deliberately mints a new identity.
func (a *App) Join(ctx context.Context, displayName string) (*models.Participant, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, fmt.Errorf("display name is required: %w", apperr.ErrInvalidInput)
	}

	id := uuid.New()
	token := uuid.New().String() + uuid.New().String()

	p, err := a.repo.CreateParticipant(ctx, id, name, token)
	if err != nil {
		return nil, fmt.Errorf("failed to join: %w", err)
	}

	log.Info().
		Str("participant_id", p.ID.String()).
		Str("name", p.Name).
		Msg("participant joined")
	return p, nil
}

// Authenticate resolves a session token to its participant.
func (a *App) Authenticate(ctx context.Context, token string) (*models.Participant, error) {
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}
	p, err := a.repo.GetParticipantByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	return p, nil
}

// Get retrieves a participant by ID.
func (a *App) Get(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	p, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}
