package vote

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/partytrivia/internal/models"
)

// Repository implements answer data access operations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new vote repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UpsertAnswer records or replaces a participant's answer for a question.
// The unique constraint on (participant_id, question_id) guarantees at most
// one row per pair even under concurrent submissions.
func (r *Repository) UpsertAnswer(ctx context.Context, req UpsertAnswerRequest) (*models.Answer, error) {
	answer := &models.Answer{
		ID:            req.ID,
		ParticipantID: req.ParticipantID,
		QuestionID:    req.QuestionID,
		OptionID:      req.OptionID,
		Correct:       req.Correct,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO answers (id, participant_id, question_id, option_id, correct)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (participant_id, question_id)
		DO UPDATE SET option_id = EXCLUDED.option_id, correct = EXCLUDED.correct, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, req.ID, req.ParticipantID, req.QuestionID, req.OptionID, req.Correct).
		Scan(&answer.ID, &answer.CreatedAt, &answer.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert answer: %w", err)
	}
	return answer, nil
}

// GetAnswer retrieves a participant's answer for a question.
func (r *Repository) GetAnswer(ctx context.Context, participantID, questionID uuid.UUID) (*models.Answer, error) {
	answer := &models.Answer{ParticipantID: participantID, QuestionID: questionID}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, option_id, correct, created_at, updated_at
		FROM answers
		WHERE participant_id = $1 AND question_id = $2
	`, participantID, questionID).
		Scan(&answer.ID, &answer.OptionID, &answer.Correct, &answer.CreatedAt, &answer.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return answer, nil
}

// CountAnswersByOption returns the vote count per option id for a question.
func (r *Repository) CountAnswersByOption(ctx context.Context, questionID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT option_id, COUNT(*) FROM answers WHERE question_id = $1 GROUP BY option_id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers by option: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			optionID uuid.UUID
			count    int
		)
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan answer count: %w", err)
		}
		counts[optionID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answer counts: %w", err)
	}
	return counts, nil
}

// DeleteAnswersByGame bulk-erases all answers for a game's questions.
func (r *Repository) DeleteAnswersByGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM answers WHERE question_id IN (SELECT id FROM questions WHERE game_id = $1)
	`, gameID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete answers by game: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected count: %w", err)
	}
	return int(affected), nil
}

// DeleteAnswersByQuestion erases all answers for one question.
func (r *Repository) DeleteAnswersByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM answers WHERE question_id = $1`, questionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete answers by question: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected count: %w", err)
	}
	return int(affected), nil
}
