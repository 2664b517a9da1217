package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking member rows
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Unit of work operation names, used as metric labels and log fields.
const (
	OpCreatePayment  = "create_payment"
	OpAcceptPayment  = "accept_payment"
	OpBlockPayment   = "block_payment"
	OpRegisterMember = "register_member"
	OpLockedBalance  = "locked_balance"
	OpBlockMember    = "block_member"
	OpUnblockMember  = "unblock_member"
	OpSetPayoutCard  = "set_payout_card"
	OpWithdraw       = "withdraw"
	OpTransfer       = "transfer"
)

// Unit of work outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
