// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package review

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/microgrants/store"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrUnauthorized            = errors.New("caller is not the grant owner")
	ErrPreconditionFailed      = errors.New("precondition failed")
	ErrConflict                = errors.New("grant was modified concurrently")
	ErrAlreadyApplied          = errors.New("application already submitted")
	ErrPartialWrite            = errors.New("operation failed partway")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrInvalidInput            = errors.New("invalid input")
)

// Reason identifies which precondition refused an operation.
type Reason string

const (
	ReasonNotOpen                   Reason = "grant_not_open"
	ReasonAuthorizationNotConfirmed Reason = "authorization_not_confirmed"
	ReasonNoPaymentMethod           Reason = "no_payment_method"
	ReasonDeadlinePassed            Reason = "deadline_passed"
	ReasonHasApplications           Reason = "grant_has_applications"
)

// PreconditionError is returned when an operation is refused because the
// grant or the caller's setup is not in the required state. It matches
// ErrPreconditionFailed with errors.Is.
type PreconditionError struct {
	Reason  Reason
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

func precondition(reason Reason, format string, args ...any) error {
	return &PreconditionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the precondition reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Reason, true
	}
	return "", false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// fromStore translates store errors into the review taxonomy.
func fromStore(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrAlreadyApplied, what)
	default:
		return err
	}
}
