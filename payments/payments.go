// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payments

import (
	"context"
	"errors"
)

var (
	ErrNoPaymentMethod = errors.New("no payment method on file")
	ErrNoPayoutMethod  = errors.New("no payout method linked")
	ErrUnavailable     = errors.New("payment service unavailable")
)

// Authorization statuses
const (
	StatusPendingClaim = "pending_claim"
	StatusCancelled    = "cancelled"
)

type Method struct {
	ID    string `json:"id"`
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

type PayoutMethod struct {
	ID       string `json:"id"`
	BankName string `json:"bank_name"`
	Last4    string `json:"last4"`
}

// ChargeRequest asks the payment service to charge PayerID, but only once
// PayeeID claims the payout. Reference is used as the idempotency key.
type ChargeRequest struct {
	PayerID     string `json:"payer_id"`
	PayeeID     string `json:"payee_id"`
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference"`
}

type Authorization struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Collaborator is the payment service as seen by the award flow. No funds
// move here: capture happens when the payee claims, outside this service.
type Collaborator interface {
	GetPaymentMethod(ctx context.Context, payerID string) (Method, error)
	GetPayoutMethod(ctx context.Context, payeeID string) (PayoutMethod, error)
	AuthorizeConditionalCharge(ctx context.Context, req ChargeRequest) (Authorization, error)
	CancelAuthorization(ctx context.Context, authorizationID string) error
}
