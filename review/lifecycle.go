// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/payments"
	"github.com/danielhkuo/microgrants/store"
)

// Lifecycle owns grant deletion and the grant detail view.
type Lifecycle struct {
	store      *store.Store
	payments   payments.Collaborator
	aggregator *Aggregator
}

func NewLifecycle(s *store.Store, p payments.Collaborator, agg *Aggregator) *Lifecycle {
	return &Lifecycle{store: s, payments: p, aggregator: agg}
}

// AuthorizeOwner loads a grant and checks that caller owns it.
func (l *Lifecycle) AuthorizeOwner(ctx context.Context, grantID, caller string) (models.Grant, error) {
	grant, err := l.store.GetGrant(ctx, grantID)
	if err != nil {
		return models.Grant{}, fromStore(err, "grant "+grantID)
	}
	if caller == "" || grant.OwnerID != caller {
		return models.Grant{}, ErrUnauthorized
	}
	return grant, nil
}

// DeleteGrant removes a grant with its answers, applications and questions.
// The delete is all-or-nothing: on failure the grant is left intact and
// ErrPartialWrite is returned.
func (l *Lifecycle) DeleteGrant(ctx context.Context, grantID, caller string) error {
	if _, err := l.AuthorizeOwner(ctx, grantID, caller); err != nil {
		return err
	}

	if err := l.store.DeleteGrantCascade(ctx, grantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fromStore(err, "grant "+grantID)
		}
		slog.Error("grant delete rolled back", "grant_id", grantID, "error", err)
		return fmt.Errorf("%w: delete grant %s: %w", ErrPartialWrite, grantID, err)
	}

	slog.Info("grant deleted", "grant_id", grantID, "owner_id", caller)
	return nil
}

// State returns the grant detail view for any viewer. caller may be empty
// for anonymous viewers.
func (l *Lifecycle) State(ctx context.Context, grantID, caller string) (models.GrantState, error) {
	grant, err := l.store.GetGrant(ctx, grantID)
	if err != nil {
		return models.GrantState{}, fromStore(err, "grant "+grantID)
	}
	return l.stateOf(ctx, grant, caller), nil
}

func (l *Lifecycle) stateOf(ctx context.Context, grant models.Grant, caller string) models.GrantState {
	state := models.GrantState{
		Grant:         grant,
		AmountDisplay: FormatAmount(grant.AmountCents),
		ReadOnly:      grant.IsAwarded(),
	}
	if !grant.IsAwarded() || grant.AwardedApplicant == nil {
		return state
	}

	winnerID := *grant.AwardedApplicant
	state.Winner = l.winnerView(ctx, grant.ID, winnerID)
	state.YouWon = caller != "" && caller == winnerID

	if state.YouWon {
		linked, err := l.payoutLinked(ctx, winnerID)
		if err != nil {
			slog.Warn("payout method lookup failed", "grant_id", grant.ID, "error", err)
		} else {
			state.WinnerPayoutLinked = &linked
		}
	}
	return state
}

func (l *Lifecycle) winnerView(ctx context.Context, grantID, applicantID string) *models.WinnerView {
	winner := &models.WinnerView{ApplicantID: applicantID, DisplayName: PlaceholderName}

	app, err := l.store.GetApplicationByApplicant(ctx, grantID, applicantID)
	if err != nil {
		slog.Warn("winning application not found", "grant_id", grantID, "applicant_id", applicantID, "error", err)
		return winner
	}

	view := l.aggregator.AggregateApplication(ctx, app)
	winner.ApplicationID = app.ID
	winner.DisplayName = view.Applicant.Value.DisplayName
	winner.LabName = view.LabName()
	return winner
}

func (l *Lifecycle) payoutLinked(ctx context.Context, payeeID string) (bool, error) {
	_, err := l.payments.GetPayoutMethod(ctx, payeeID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, payments.ErrNoPayoutMethod):
		return false, nil
	default:
		return false, err
	}
}
