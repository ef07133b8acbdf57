// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Open connects to the configured database and verifies the connection.
func Open(dbType, url string) (*sqlx.DB, error) {
	switch dbType {
	case TypePostgres, TypeSQLite:
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sqlx.Connect(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dbType, err)
	}

	if dbType == TypeSQLite {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema is shared by postgres and sqlite, so it sticks to types and
// defaults both understand. References are plain columns: the service
// resolves them itself and tolerates dangling ones.
const schema = `
-- Grants
CREATE TABLE IF NOT EXISTS grants (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
    categories TEXT NOT NULL DEFAULT '[]',
    deadline TIMESTAMP NOT NULL,
    owner_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'awarded')),
    awarded_applicant TEXT,
    payment_authorization_id TEXT,
    version BIGINT NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    awarded_at TIMESTAMP,
    CHECK ((status = 'open' AND awarded_applicant IS NULL)
        OR (status = 'awarded' AND awarded_applicant IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_grants_owner_id ON grants(owner_id);

-- Questions
CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    grant_id TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    text TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('short_answer', 'multiple_choice')),
    word_limit INTEGER,
    options TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_questions_grant_id ON questions(grant_id);

-- Applications
CREATE TABLE IF NOT EXISTS applications (
    id TEXT PRIMARY KEY,
    grant_id TEXT NOT NULL,
    applicant_id TEXT NOT NULL,
    lab_id TEXT,
    shortlisted BOOLEAN NOT NULL DEFAULT FALSE,
    acceptance_status TEXT CHECK (acceptance_status IS NULL OR acceptance_status = 'awarded'),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (grant_id, applicant_id)
);

CREATE INDEX IF NOT EXISTS idx_applications_grant_id ON applications(grant_id);

-- Answers
CREATE TABLE IF NOT EXISTS answers (
    id TEXT PRIMARY KEY,
    application_id TEXT NOT NULL,
    grant_id TEXT NOT NULL,
    applicant_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answers_grant_applicant ON answers(grant_id, applicant_id);

-- Read-only projections
CREATE TABLE IF NOT EXISTS profiles (
    user_id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    avatar_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS labs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    avatar_url TEXT NOT NULL DEFAULT ''
);
`
