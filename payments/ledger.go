// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Ledger is an in-process Collaborator used in local development and tests.
// The Fail* fields inject errors into the matching operation.
type Ledger struct {
	mu             sync.Mutex
	paymentMethods map[string]Method
	payoutMethods  map[string]PayoutMethod
	authorizations map[string]LedgerEntry
	calls          map[string]int

	FailPaymentLookup error
	FailAuthorize     error
}

// LedgerEntry is one recorded conditional charge.
type LedgerEntry struct {
	Authorization
	ChargeRequest
}

func NewLedger() *Ledger {
	return &Ledger{
		paymentMethods: make(map[string]Method),
		payoutMethods:  make(map[string]PayoutMethod),
		authorizations: make(map[string]LedgerEntry),
		calls:          make(map[string]int),
	}
}

func (l *Ledger) SetPaymentMethod(payerID string, m Method) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	l.paymentMethods[payerID] = m
}

func (l *Ledger) SetPayoutMethod(payeeID string, m PayoutMethod) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	l.payoutMethods[payeeID] = m
}

func (l *Ledger) GetPaymentMethod(ctx context.Context, payerID string) (Method, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls["GetPaymentMethod"]++

	if l.FailPaymentLookup != nil {
		return Method{}, l.FailPaymentLookup
	}
	m, ok := l.paymentMethods[payerID]
	if !ok {
		return Method{}, ErrNoPaymentMethod
	}
	return m, nil
}

func (l *Ledger) GetPayoutMethod(ctx context.Context, payeeID string) (PayoutMethod, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls["GetPayoutMethod"]++

	m, ok := l.payoutMethods[payeeID]
	if !ok {
		return PayoutMethod{}, ErrNoPayoutMethod
	}
	return m, nil
}

func (l *Ledger) AuthorizeConditionalCharge(ctx context.Context, req ChargeRequest) (Authorization, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls["AuthorizeConditionalCharge"]++

	if l.FailAuthorize != nil {
		return Authorization{}, l.FailAuthorize
	}
	a := Authorization{ID: uuid.NewString(), Status: StatusPendingClaim}
	l.authorizations[a.ID] = LedgerEntry{Authorization: a, ChargeRequest: req}
	return a, nil
}

func (l *Ledger) CancelAuthorization(ctx context.Context, authorizationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls["CancelAuthorization"]++

	entry, ok := l.authorizations[authorizationID]
	if !ok {
		return nil
	}
	entry.Status = StatusCancelled
	l.authorizations[authorizationID] = entry
	return nil
}

// Calls returns how many times the named operation was invoked.
func (l *Ledger) Calls(op string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[op]
}

// Entries returns a copy of every recorded authorization.
func (l *Ledger) Entries() []LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LedgerEntry, 0, len(l.authorizations))
	for _, e := range l.authorizations {
		out = append(out, e)
	}
	return out
}

// Pending returns the authorizations still waiting for the payee's claim.
func (l *Ledger) Pending() []LedgerEntry {
	var out []LedgerEntry
	for _, e := range l.Entries() {
		if e.Status == StatusPendingClaim {
			out = append(out, e)
		}
	}
	return out
}
