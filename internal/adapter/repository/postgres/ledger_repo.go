package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tradeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/tradeledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency compares processed payments with their payment entries.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (usecase.ConsistencyReport, error) {
	row, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return usecase.ConsistencyReport{}, err
	}

	return usecase.ConsistencyReport{
		ProcessedPayments: row.ProcessedPayments,
		PaymentEntries:    row.PaymentEntries,
		MissingEntries:    row.MissingEntries,
		OrphanEntries:     row.OrphanEntries,
		DuplicateEntries:  row.DuplicateEntries,
	}, nil
}
