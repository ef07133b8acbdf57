// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/microgrants/models"
)

const grantColumns = `id, name, description, amount_cents, categories, deadline, owner_id,
	status, awarded_applicant, payment_authorization_id, version, created_at, awarded_at`

// CreateGrant inserts an open grant. ID and CreatedAt are filled in if empty.
func (s *Store) CreateGrant(ctx context.Context, g *models.Grant) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.Status = models.StatusOpen
	g.AwardedApplicant = nil
	g.Version = 1

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO grants (id, name, description, amount_cents, categories, deadline, owner_id, status, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), g.ID, g.Name, g.Description, g.AmountCents, g.Categories, g.Deadline.UTC(), g.OwnerID, g.Status, g.Version, g.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, id string) (models.Grant, error) {
	var g models.Grant
	err := s.db.GetContext(ctx, &g, s.db.Rebind(`SELECT `+grantColumns+` FROM grants WHERE id = ?`), id)
	if err != nil {
		return models.Grant{}, notFound(err)
	}
	return g, nil
}

func (s *Store) ListGrantsByOwner(ctx context.Context, ownerID string) ([]models.Grant, error) {
	grants := []models.Grant{}
	err := s.db.SelectContext(ctx, &grants, s.db.Rebind(`
		SELECT `+grantColumns+` FROM grants WHERE owner_id = ? ORDER BY created_at DESC, id
	`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	return grants, nil
}

// MarkGrantAwarded moves a grant from open to awarded. It only succeeds if
// the grant is still open at expectedVersion; otherwise ErrConflict.
func MarkGrantAwarded(ctx context.Context, ext sqlx.ExtContext, grantID, applicantID string, expectedVersion int64, at time.Time) error {
	res, err := ext.ExecContext(ctx, ext.Rebind(`
		UPDATE grants
		SET status = ?, awarded_applicant = ?, awarded_at = ?, version = version + 1
		WHERE id = ? AND status = ? AND version = ?
	`), models.StatusAwarded, applicantID, at.UTC(), grantID, models.StatusOpen, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to mark grant awarded: %w", err)
	}
	return expectOneRow(res, ErrConflict)
}

// SetPaymentAuthorization records the conditional charge backing an award.
func SetPaymentAuthorization(ctx context.Context, ext sqlx.ExtContext, grantID, authorizationID string) error {
	res, err := ext.ExecContext(ctx, ext.Rebind(`
		UPDATE grants SET payment_authorization_id = ? WHERE id = ?
	`), authorizationID, grantID)
	if err != nil {
		return fmt.Errorf("failed to record payment authorization: %w", err)
	}
	return expectOneRow(res, ErrNotFound)
}

// DeleteGrantCascade removes a grant and everything referencing it, in
// reference order, inside a single transaction.
func (s *Store) DeleteGrantCascade(ctx context.Context, grantID string) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM answers WHERE grant_id = ?`), grantID); err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM applications WHERE grant_id = ?`), grantID); err != nil {
			return fmt.Errorf("failed to delete applications: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM questions WHERE grant_id = ?`), grantID); err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM grants WHERE id = ?`), grantID)
		if err != nil {
			return fmt.Errorf("failed to delete grant: %w", err)
		}
		return expectOneRow(res, ErrNotFound)
	})
}
