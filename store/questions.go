// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/microgrants/models"
)

// CreateQuestion appends a question to the end of a grant's question list.
func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(`
			SELECT COALESCE(MAX(position), -1) + 1 FROM questions WHERE grant_id = ?
		`), q.GrantID).Scan(&q.Position)
		if err != nil {
			return fmt.Errorf("failed to compute question position: %w", err)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO questions (id, grant_id, position, text, type, word_limit, options)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), q.ID, q.GrantID, q.Position, q.Text, q.Type, q.WordLimit, q.Options)
		if err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
		return nil
	})
}

func (s *Store) ListQuestions(ctx context.Context, grantID string) ([]models.Question, error) {
	questions := []models.Question{}
	err := s.db.SelectContext(ctx, &questions, s.db.Rebind(`
		SELECT id, grant_id, position, text, type, word_limit, options
		FROM questions WHERE grant_id = ? ORDER BY position, id
	`), grantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}
