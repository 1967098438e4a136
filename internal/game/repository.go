package game

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/partytrivia/internal/models"
	"github.com/mcdev12/partytrivia/internal/sqlutil"
)

// Repository implements game data access operations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new game repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const gameColumns = `id, name, description, status, current_question_id, is_active, created_at, updated_at`

// CreateGame inserts a new game in the waiting state.
func (r *Repository) CreateGame(ctx context.Context, id uuid.UUID, name string, description *string) (*models.Game, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO games (id, name, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+gameColumns,
		id, name, description, models.GameStatusWaiting)
	game, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

// GetGame retrieves a game by ID.
func (r *Repository) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	game, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// GetActiveGame retrieves the single currently active game. The partial unique
// index on is_active guarantees at most one row qualifies.
func (r *Repository) GetActiveGame(ctx context.Context) (*models.Game, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE is_active`)
	game, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}
	return game, nil
}

// ListGames returns all games, newest first.
func (r *Repository) ListGames(ctx context.Context) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var result []models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		result = append(result, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}
	return result, nil
}

// SetActiveGame marks one game active, deactivating any other inside the same
// transaction so the single-active invariant never breaks mid-switch.
func (r *Repository) SetActiveGame(ctx context.Context, id uuid.UUID) error {
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE games SET is_active = FALSE, updated_at = NOW() WHERE is_active AND id <> $1`, id); err != nil {
			return fmt.Errorf("failed to deactivate games: %w", err)
		}
		result, err := tx.ExecContext(ctx, `UPDATE games SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to activate game: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected count: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("game not found: %w", sql.ErrNoRows)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set active game: %w", err)
	}
	return nil
}

// UpdateGameStatus transitions a game's lifecycle status.
func (r *Repository) UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE games SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected count: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("game not found: %w", sql.ErrNoRows)
	}
	return nil
}

// SetCurrentQuestion points a game at its active question; nil clears it.
func (r *Repository) SetCurrentQuestion(ctx context.Context, id uuid.UUID, questionID *uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE games SET current_question_id = $2, updated_at = NOW() WHERE id = $1
	`, id, questionID)
	if err != nil {
		return fmt.Errorf("failed to set current question: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected count: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("game not found: %w", sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	var game models.Game
	err := row.Scan(&game.ID, &game.Name, &game.Description, &game.Status,
		&game.CurrentQuestionID, &game.IsActive, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &game, nil
}
