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

const applicationColumns = `id, grant_id, applicant_id, lab_id, shortlisted, acceptance_status, created_at`

// CreateApplicationWithAnswers stores a submission and its answers together.
// A second submission for the same (grant, applicant) returns ErrDuplicate.
func (s *Store) CreateApplicationWithAnswers(ctx context.Context, app *models.Application, answers []models.Answer) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	app.Shortlisted = false
	app.AcceptanceStatus = nil

	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO applications (id, grant_id, applicant_id, lab_id, shortlisted, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`), app.ID, app.GrantID, app.ApplicantID, app.LabID, false, app.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert application: %w", err)
		}

		for i := range answers {
			ans := &answers[i]
			if ans.ID == "" {
				ans.ID = uuid.NewString()
			}
			ans.ApplicationID = app.ID
			ans.GrantID = app.GrantID
			ans.ApplicantID = app.ApplicantID

			_, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO answers (id, application_id, grant_id, applicant_id, question_id, content)
				VALUES (?, ?, ?, ?, ?, ?)
			`), ans.ID, ans.ApplicationID, ans.GrantID, ans.ApplicantID, ans.QuestionID, ans.Content)
			if err != nil {
				return fmt.Errorf("failed to insert answer: %w", err)
			}
		}
		return nil
	})
}

// ListApplications returns a grant's applications in submission order.
func (s *Store) ListApplications(ctx context.Context, grantID string) ([]models.Application, error) {
	apps := []models.Application{}
	err := s.db.SelectContext(ctx, &apps, s.db.Rebind(`
		SELECT `+applicationColumns+` FROM applications WHERE grant_id = ? ORDER BY created_at, id
	`), grantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (models.Application, error) {
	var app models.Application
	err := s.db.GetContext(ctx, &app, s.db.Rebind(`SELECT `+applicationColumns+` FROM applications WHERE id = ?`), id)
	if err != nil {
		return models.Application{}, notFound(err)
	}
	return app, nil
}

// CountApplications returns the total and shortlisted application counts.
func (s *Store) CountApplications(ctx context.Context, grantID string) (total, shortlisted int, err error) {
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN shortlisted THEN 1 ELSE 0 END), 0)
		FROM applications WHERE grant_id = ?
	`), grantID).Scan(&total, &shortlisted)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return total, shortlisted, nil
}

// SetShortlisted writes the shortlist flag only.
func (s *Store) SetShortlisted(ctx context.Context, applicationID string, value bool) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE applications SET shortlisted = ? WHERE id = ?
	`), value, applicationID)
	if err != nil {
		return fmt.Errorf("failed to update shortlist: %w", err)
	}
	return expectOneRow(res, ErrNotFound)
}

// MarkApplicationAwarded sets the acceptance status of the winning application.
func MarkApplicationAwarded(ctx context.Context, ext sqlx.ExtContext, applicationID, grantID string) error {
	res, err := ext.ExecContext(ctx, ext.Rebind(`
		UPDATE applications SET acceptance_status = ? WHERE id = ? AND grant_id = ?
	`), models.AcceptanceAwarded, applicationID, grantID)
	if err != nil {
		return fmt.Errorf("failed to mark application awarded: %w", err)
	}
	return expectOneRow(res, ErrNotFound)
}

// ListAnswers returns the answers one applicant gave for one grant.
func (s *Store) ListAnswers(ctx context.Context, grantID, applicantID string) ([]models.Answer, error) {
	answers := []models.Answer{}
	err := s.db.SelectContext(ctx, &answers, s.db.Rebind(`
		SELECT id, application_id, grant_id, applicant_id, question_id, content
		FROM answers WHERE grant_id = ? AND applicant_id = ?
	`), grantID, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

// GetApplicationByApplicant finds the application one applicant made to one grant.
func (s *Store) GetApplicationByApplicant(ctx context.Context, grantID, applicantID string) (models.Application, error) {
	var app models.Application
	err := s.db.GetContext(ctx, &app, s.db.Rebind(`
		SELECT `+applicationColumns+` FROM applications WHERE grant_id = ? AND applicant_id = ?
	`), grantID, applicantID)
	if err != nil {
		return models.Application{}, notFound(err)
	}
	return app, nil
}
