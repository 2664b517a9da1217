package domain

import (
	"errors"
	"fmt"
)

// Root kinds. Every domain error wraps exactly one of them.
var (
	ErrRuleViolation = errors.New("domain rule violation")
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
)

var (
	// Money errors
	ErrCurrencyMismatch = fmt.Errorf("%w: currency mismatch", ErrRuleViolation)
	ErrAmountOverflow   = fmt.Errorf("%w: amount overflow", ErrRuleViolation)
	ErrPrecisionLoss    = fmt.Errorf("%w: amount has too many fractional digits", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)

	// Payment errors
	ErrPaymentAlreadyProcessed = fmt.Errorf("%w: payment already processed", ErrRuleViolation)
	ErrPaymentBlocked          = fmt.Errorf("%w: payment is blocked", ErrRuleViolation)
	ErrPaymentNotFound         = fmt.Errorf("payment %w", ErrNotFound)
	ErrMissingID               = fmt.Errorf("%w: id is required", ErrValidation)

	// Member errors
	ErrMemberNotFound      = fmt.Errorf("member %w", ErrNotFound)
	ErrMemberExists        = fmt.Errorf("%w: member already registered", ErrRuleViolation)
	ErrMemberBlocked       = fmt.Errorf("%w: member is blocked", ErrRuleViolation)
	ErrInsufficientFunds   = fmt.Errorf("%w: insufficient funds", ErrRuleViolation)
	ErrBalanceNotLoaded    = errors.New("member balance was not loaded")
	ErrSameAccount         = fmt.Errorf("%w: cannot transfer to same account", ErrValidation)
	ErrInvalidAccountType  = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrInvalidCardFragment = fmt.Errorf("%w: invalid card fragment", ErrValidation)
)
