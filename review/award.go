// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/microgrants/metrics"
	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/payments"
	"github.com/danielhkuo/microgrants/store"
)

// AwardRequest names exactly one application to win a grant.
type AwardRequest struct {
	GrantID                string
	ApplicationID          string
	Caller                 string
	AuthorizationConfirmed bool
}

// Authorizer runs the one-way open -> awarded transition.
//
// An award records intent only: the payment service is asked to charge the
// owner once the winner claims the payout, and capture happens outside this
// service.
type Authorizer struct {
	store    *store.Store
	payments payments.Collaborator
	now      func() time.Time
}

func NewAuthorizer(s *store.Store, p payments.Collaborator) *Authorizer {
	return &Authorizer{store: s, payments: p, now: time.Now}
}

// CheckPreconditions verifies everything about the grant, the caller and
// the target application. It performs no writes and no payment calls.
func (a *Authorizer) CheckPreconditions(ctx context.Context, req AwardRequest) (models.Grant, models.Application, error) {
	grant, err := a.store.GetGrant(ctx, req.GrantID)
	if err != nil {
		return models.Grant{}, models.Application{}, fromStore(err, "grant "+req.GrantID)
	}
	if grant.OwnerID != req.Caller {
		return models.Grant{}, models.Application{}, ErrUnauthorized
	}
	if grant.Status != models.StatusOpen {
		return models.Grant{}, models.Application{}, precondition(ReasonNotOpen, "grant %s has already been awarded", grant.ID)
	}

	app, err := a.store.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		return models.Grant{}, models.Application{}, fromStore(err, "application "+req.ApplicationID)
	}
	if app.GrantID != grant.ID {
		return models.Grant{}, models.Application{}, fmt.Errorf("%w: application %s in grant %s", ErrNotFound, app.ID, grant.ID)
	}

	if !req.AuthorizationConfirmed {
		return models.Grant{}, models.Application{}, precondition(ReasonAuthorizationNotConfirmed,
			"confirm the conditional charge of %s before awarding", FormatAmount(grant.AmountCents))
	}
	return grant, app, nil
}

// CheckPaymentMethod requires a retrievable payment method for the payer.
func (a *Authorizer) CheckPaymentMethod(ctx context.Context, payerID string) (payments.Method, error) {
	method, err := a.payments.GetPaymentMethod(ctx, payerID)
	switch {
	case err == nil:
		return method, nil
	case errors.Is(err, payments.ErrNoPaymentMethod):
		return payments.Method{}, precondition(ReasonNoPaymentMethod, "add a payment method before awarding")
	default:
		return payments.Method{}, fmt.Errorf("%w: payment method lookup: %w", ErrCollaboratorUnavailable, err)
	}
}

// Award moves the grant to awarded and marks the application as the winner.
//
// The conditional charge is registered first, outside any transaction. Both
// writes and the authorization id are then committed in one transaction
// guarded by a compare-and-swap on the grant version, so a concurrent award
// loses with ErrConflict instead of double-awarding. If the transaction does
// not commit, the authorization is cancelled.
func (a *Authorizer) Award(ctx context.Context, req AwardRequest) (models.Grant, error) {
	grant, err := a.award(ctx, req)
	metrics.RecordAward(outcomeOf(err))
	return grant, err
}

func (a *Authorizer) award(ctx context.Context, req AwardRequest) (models.Grant, error) {
	grant, app, err := a.CheckPreconditions(ctx, req)
	if err != nil {
		return models.Grant{}, err
	}
	if _, err := a.CheckPaymentMethod(ctx, grant.OwnerID); err != nil {
		return models.Grant{}, err
	}

	authorization, err := a.payments.AuthorizeConditionalCharge(ctx, payments.ChargeRequest{
		PayerID:     grant.OwnerID,
		PayeeID:     app.ApplicantID,
		AmountCents: grant.AmountCents,
		Reference:   grant.ID,
	})
	if err != nil {
		return models.Grant{}, fmt.Errorf("%w: conditional charge: %w", ErrCollaboratorUnavailable, err)
	}

	awardedAt := a.now().UTC()
	err = a.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := store.MarkGrantAwarded(ctx, tx, grant.ID, app.ApplicantID, grant.Version, awardedAt); err != nil {
			return fromStore(err, "grant "+grant.ID)
		}
		if err := store.MarkApplicationAwarded(ctx, tx, app.ID, grant.ID); err != nil {
			return fromStore(err, "application "+app.ID)
		}
		return store.SetPaymentAuthorization(ctx, tx, grant.ID, authorization.ID)
	})
	if err != nil {
		a.cancelAuthorization(ctx, grant.ID, authorization.ID)
		if errors.Is(err, store.ErrCommit) {
			return models.Grant{}, fmt.Errorf("%w: award of grant %s: %w", ErrPartialWrite, grant.ID, err)
		}
		return models.Grant{}, err
	}

	slog.Info("grant awarded",
		"grant_id", grant.ID,
		"application_id", app.ID,
		"applicant_id", app.ApplicantID,
		"amount", FormatAmount(grant.AmountCents),
		"authorization_id", authorization.ID,
	)

	grant.Status = models.StatusAwarded
	grant.AwardedApplicant = &app.ApplicantID
	grant.AwardedAt = &awardedAt
	grant.PaymentAuthorizationID = &authorization.ID
	grant.Version++
	return grant, nil
}

func (a *Authorizer) cancelAuthorization(ctx context.Context, grantID, authorizationID string) {
	// the request context may already be done; compensation must still go out
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := a.payments.CancelAuthorization(cctx, authorizationID); err != nil {
		slog.Error("failed to cancel payment authorization",
			"grant_id", grantID, "authorization_id", authorizationID, "error", err)
		return
	}
	slog.Warn("payment authorization cancelled after failed award", "grant_id", grantID, "authorization_id", authorizationID)
}

func outcomeOf(err error) string {
	if err == nil {
		return "awarded"
	}
	if reason, ok := ReasonOf(err); ok {
		return string(reason)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrCollaboratorUnavailable):
		return "collaborator_unavailable"
	case errors.Is(err, ErrPartialWrite):
		return "partial_write"
	default:
		return "error"
	}
}
