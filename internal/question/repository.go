package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/partytrivia/internal/models"
)

// Repository implements question data access operations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new question repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const questionColumns = `id, game_id, kind, prompt, image_url, options, correct_answer, no_correct_answer, allow_custom_answers, position, created_at`

// CreateQuestion inserts a question at the end of its game's order.
func (r *Repository) CreateQuestion(ctx context.Context, req CreateQuestionRequest) (*models.Question, error) {
	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO questions (id, game_id, kind, prompt, image_url, options, correct_answer, no_correct_answer, allow_custom_answers, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM questions WHERE game_id = $2))
		RETURNING `+questionColumns,
		req.ID, req.GameID, req.Kind, req.Prompt, req.ImageURL, optionsJSON,
		req.CorrectAnswer, req.NoCorrectAnswer, req.AllowCustomAnswers)

	q, err := scanQuestion(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return q, nil
}

// GetQuestion retrieves a question by ID.
func (r *Repository) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+questionColumns+` FROM questions WHERE id = $1
	`, id)
	q, err := scanQuestion(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// GetQuestionsByGame lists a game's questions in display order.
func (r *Repository) GetQuestionsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+questionColumns+` FROM questions WHERE game_id = $1 ORDER BY position, created_at
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions by game: %w", err)
	}
	defer rows.Close()

	var result []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		result = append(result, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	return result, nil
}

// UpdateQuestion applies a host edit to a question.
func (r *Repository) UpdateQuestion(ctx context.Context, id uuid.UUID, req UpdateQuestionRequest) (*models.Question, error) {
	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE questions
		SET kind = $2, prompt = $3, image_url = $4, options = $5,
			correct_answer = $6, no_correct_answer = $7, allow_custom_answers = $8
		WHERE id = $1
		RETURNING `+questionColumns,
		id, req.Kind, req.Prompt, req.ImageURL, optionsJSON,
		req.CorrectAnswer, req.NoCorrectAnswer, req.AllowCustomAnswers)

	q, err := scanQuestion(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return q, nil
}

// DeleteQuestion removes a question; its options and answers cascade.
func (r *Repository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected count: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("question not found: %w", sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var (
		q           models.Question
		optionsJSON []byte
	)
	err := row.Scan(&q.ID, &q.GameID, &q.Kind, &q.Prompt, &q.ImageURL, &optionsJSON,
		&q.CorrectAnswer, &q.NoCorrectAnswer, &q.AllowCustomAnswers, &q.Position, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return &q, nil
}
