package participant

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/partytrivia/internal/models"
)

// Repository implements participant data access operations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new participant repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateParticipant inserts a new guest session row.
func (r *Repository) CreateParticipant(ctx context.Context, id uuid.UUID, name, token string) (*models.Participant, error) {
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO participants (id, name, token)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, id, name, token).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	return &models.Participant{
		ID:        id,
		Name:      name,
		Token:     token,
		CreatedAt: createdAt,
	}, nil
}

// GetParticipantByToken looks up a guest session by its opaque token.
func (r *Repository) GetParticipantByToken(ctx context.Context, token string) (*models.Participant, error) {
	p := &models.Participant{Token: token}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM participants WHERE token = $1
	`, token).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant by token: %w", err)
	}
	return p, nil
}

// GetParticipant retrieves a participant by ID.
func (r *Repository) GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	p := &models.Participant{ID: id}
	err := r.db.QueryRowContext(ctx, `
		SELECT name, token, created_at FROM participants WHERE id = $1
	`, id).Scan(&p.Name, &p.Token, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}
