package dbschema

import (
	"database/sql"
	"fmt"
)

// Ensure creates all tables needed by the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func Ensure(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'waiting' CHECK (status IN ('waiting', 'active', 'results')),
    current_question_id UUID,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_games_single_active ON games(is_active) WHERE is_active;

CREATE TABLE IF NOT EXISTS questions (
    id UUID PRIMARY KEY,
    game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    kind TEXT NOT NULL DEFAULT 'text' CHECK (kind IN ('text', 'image')),
    prompt TEXT NOT NULL,
    image_url TEXT,
    options JSONB NOT NULL DEFAULT '[]',
    correct_answer TEXT,
    no_correct_answer BOOLEAN NOT NULL DEFAULT FALSE,
    allow_custom_answers BOOLEAN NOT NULL DEFAULT FALSE,
    position INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_questions_game_id ON questions(game_id, position);

CREATE TABLE IF NOT EXISTS answer_options (
    id UUID PRIMARY KEY,
    question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    provenance TEXT NOT NULL DEFAULT 'predefined' CHECK (provenance IN ('predefined', 'custom')),
    contributor_name TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_answer_options_text
    ON answer_options(question_id, LOWER(TRIM(text)));

CREATE TABLE IF NOT EXISTS participants (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    token TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS answers (
    id UUID PRIMARY KEY,
    participant_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
    question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    option_id UUID NOT NULL REFERENCES answer_options(id) ON DELETE CASCADE,
    correct BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (participant_id, question_id)
);

CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id);
`
