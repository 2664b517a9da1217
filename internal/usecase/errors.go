package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/tradeledger/internal/domain"
)

// PostgreSQL SQLSTATE codes that mark a transaction as safe to re-run.
const (
	sqlStateDeadlock             = "40P01"
	sqlStateSerializationFailure = "40001"
)

// InfrastructureError marks a failure of storage or another collaborator, as
// opposed to a command the domain rejected.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-running the whole unit of work may succeed.
func (e *InfrastructureError) Retryable() bool {
	var state interface{ SQLState() string }
	if errors.As(e.Err, &state) {
		switch state.SQLState() {
		case sqlStateDeadlock, sqlStateSerializationFailure:
			return true
		}
	}

	return false
}

// Kind is the caller-facing category of an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindRejected
	KindNotFound
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindNotFound:
		return "not_found"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// Classify maps err to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrRuleViolation), errors.Is(err, domain.ErrValidation):
		return KindRejected
	}

	var infra *InfrastructureError
	if errors.As(err, &infra) {
		return KindInfrastructure
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindInfrastructure
	}

	return KindUnknown
}

// IsDomainError reports whether err is a rejection or a not-found produced by
// domain rules.
func IsDomainError(err error) bool {
	k := Classify(err)
	return k == KindRejected || k == KindNotFound
}

func outcomeOf(err error) string {
	switch Classify(err) {
	case KindUnknown:
		if err == nil {
			return OutcomeCommitted
		}

		return OutcomeFailed
	case KindRejected:
		return OutcomeRejected
	case KindNotFound:
		return OutcomeNotFound
	default:
		return OutcomeFailed
	}
}
