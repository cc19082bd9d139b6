package ledger

import (
	"errors"
	"fmt"
)

// Error kinds returned by the services. Callers test them with errors.Is or
// classify them with KindOf.
var (
	ErrValidation          = errors.New("validation error")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPlanificationLocked = errors.New("planification locked")
	ErrAlreadyValidated    = errors.New("planification already validated")
	ErrStorage             = errors.New("storage failure")
	ErrLimitReached        = errors.New("limit reached")
	ErrNotFound            = errors.New("not found")

	ErrInvalidTransfer = fmt.Errorf("%w: invalid transfer", ErrValidation)
	ErrProtected       = fmt.Errorf("%w: record is protected", ErrValidation)
)

// Kind is the coarse classification of a service error.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindInsufficientBalance
	KindPlanificationLocked
	KindAlreadyValidated
	KindLimitReached
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindPlanificationLocked:
		return "planification_locked"
	case KindAlreadyValidated:
		return "already_validated"
	case KindLimitReached:
		return "limit_reached"
	case KindNotFound:
		return "not_found"
	}
	return "storage"
}

// KindOf classifies err. Errors the services did not produce count as storage
// failures.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrPlanificationLocked):
		return KindPlanificationLocked
	case errors.Is(err, ErrAlreadyValidated):
		return KindAlreadyValidated
	case errors.Is(err, ErrLimitReached):
		return KindLimitReached
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	}
	return KindStorage
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storage wraps a driver error so that it matches both ErrStorage and the
// original error.
func storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
