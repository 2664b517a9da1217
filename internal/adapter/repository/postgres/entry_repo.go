package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/infrastructure/postgres/generated"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// ListByAccount retrieves entries of an account, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Entry, error) {
	rows, err := r.queries.GetEntriesByAccount(ctx, generated.GetEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListBySource retrieves the entries produced by one payment or transfer.
func (r *EntryRepository) ListBySource(ctx context.Context, sourceID string) ([]domain.Entry, error) {
	rows, err := r.queries.GetEntriesBySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// BalanceAt sums the accepted entries of an account created at or before at.
func (r *EntryRepository) BalanceAt(ctx context.Context, accountID string, currency domain.Currency, at time.Time) (domain.Money, error) {
	balance, err := r.queries.GetAccountBalanceAtTime(ctx, generated.GetAccountBalanceAtTimeParams{
		AccountID: accountID,
		CreatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(balance, currency), nil
}
