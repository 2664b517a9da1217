package usecase

import (
	"context"
	"errors"
)

var (
	// ErrInconsistentLedger is returned when payments and their entries disagree.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: payments and entries disagree")
)

// ConsistencyReport summarizes how processed payments line up with payment
// entries.
type ConsistencyReport struct {
	ProcessedPayments int64
	PaymentEntries    int64
	// processed payments without an accepted payment entry
	MissingEntries int64
	// payment entries whose payment is not processed or does not exist
	OrphanEntries int64
	// payments with more than one payment entry
	DuplicateEntries int64
}

// Consistent reports whether every processed payment has exactly one
// payment entry and every payment entry belongs to a processed payment.
func (r ConsistencyReport) Consistent() bool {
	return r.MissingEntries == 0 &&
		r.OrphanEntries == 0 &&
		r.DuplicateEntries == 0 &&
		r.ProcessedPayments == r.PaymentEntries
}

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency runs the ledger checks. The report is returned together
// with ErrInconsistentLedger when a check fails.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (ConsistencyReport, error) {
	report, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return ConsistencyReport{}, &InfrastructureError{Op: "check_consistency", Err: err}
	}

	if !report.Consistent() {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
