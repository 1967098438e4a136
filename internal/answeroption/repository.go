package answeroption

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mcdev12/partytrivia/internal/models"
)

// Repository implements answer option data access operations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new answer option repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const optionColumns = `id, question_id, text, provenance, contributor_name, created_at`

// CountOptionsByQuestion returns the number of registered options for a question.
func (r *Repository) CountOptionsByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM answer_options WHERE question_id = $1
	`, questionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count options: %w", err)
	}
	return count, nil
}

// InsertPredefinedOptions registers a question's predefined options in one batch.
func (r *Repository) InsertPredefinedOptions(ctx context.Context, questionID uuid.UUID, texts []string) error {
	ids := make([]string, len(texts))
	for i := range texts {
		ids[i] = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO answer_options (id, question_id, text, provenance)
		SELECT unnest($1::uuid[]), $2, unnest($3::text[]), $4
	`, pq.Array(ids), questionID, pq.Array(texts), models.OptionProvenancePredefined)
	if err != nil {
		return fmt.Errorf("failed to insert predefined options: %w", err)
	}
	return nil
}

// InsertCustomOption registers a participant-contributed option.
func (r *Repository) InsertCustomOption(ctx context.Context, id, questionID uuid.UUID, text string, contributorName *string) (*models.AnswerOption, error) {
	option := &models.AnswerOption{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO answer_options (id, question_id, text, provenance, contributor_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+optionColumns,
		id, questionID, text, models.OptionProvenanceCustom, contributorName).
		Scan(&option.ID, &option.QuestionID, &option.Text, &option.Provenance, &option.ContributorName, &option.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert custom option: %w", err)
	}
	return option, nil
}

// OptionTextExists reports whether a question already has an option with the
// given text, ignoring case and surrounding whitespace.
func (r *Repository) OptionTextExists(ctx context.Context, questionID uuid.UUID, text string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM answer_options
			WHERE question_id = $1 AND LOWER(TRIM(text)) = LOWER(TRIM($2))
		)
	`, questionID, text).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check option text: %w", err)
	}
	return exists, nil
}

// GetOptionByText retrieves the option matching the given text, ignoring case
// and surrounding whitespace.
func (r *Repository) GetOptionByText(ctx context.Context, questionID uuid.UUID, text string) (*models.AnswerOption, error) {
	option := &models.AnswerOption{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+optionColumns+` FROM answer_options
		WHERE question_id = $1 AND LOWER(TRIM(text)) = LOWER(TRIM($2))
	`, questionID, text).
		Scan(&option.ID, &option.QuestionID, &option.Text, &option.Provenance, &option.ContributorName, &option.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get option by text: %w", err)
	}
	return option, nil
}

// GetOptionsByQuestion lists a question's options in registration order, so
// predefined options come first and custom ones follow as they arrived.
func (r *Repository) GetOptionsByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.AnswerOption, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+optionColumns+` FROM answer_options WHERE question_id = $1 ORDER BY created_at, id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options by question: %w", err)
	}
	defer rows.Close()

	var result []models.AnswerOption
	for rows.Next() {
		var option models.AnswerOption
		if err := rows.Scan(&option.ID, &option.QuestionID, &option.Text, &option.Provenance, &option.ContributorName, &option.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		result = append(result, option)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}
	return result, nil
}

// DeleteCustomOptionsByGame bulk-erases custom options across a game's questions.
func (r *Repository) DeleteCustomOptionsByGame(ctx context.Context, gameID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM answer_options
		WHERE provenance = $1
		  AND question_id IN (SELECT id FROM questions WHERE game_id = $2)
	`, models.OptionProvenanceCustom, gameID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete custom options by game: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected count: %w", err)
	}
	return int(affected), nil
}

// DeleteCustomOptionsByQuestion erases one question's custom options.
func (r *Repository) DeleteCustomOptionsByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM answer_options WHERE provenance = $1 AND question_id = $2
	`, models.OptionProvenanceCustom, questionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete custom options by question: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected count: %w", err)
	}
	return int(affected), nil
}
