package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/tradeledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// txQueries binds generated queries to the pgx transaction behind tx.
func txQueries(tx usecase.Transaction) *generated.Queries {
	return generated.New(tx.(*Tx).PgxTx())
}

// insertEntries appends entries to the log inside tx.
func insertEntries(ctx context.Context, q *generated.Queries, entries []domain.Entry) error {
	for _, e := range entries {
		if err := q.CreateEntry(ctx, entryToParams(e)); err != nil {
			return err
		}
	}

	return nil
}

func entryToParams(e domain.Entry) generated.CreateEntryParams {
	return generated.CreateEntryParams{
		ID:          e.ID(),
		AccountID:   e.AccountID(),
		SourceID:    e.SourceID(),
		Amount:      e.Amount().Amount(),
		Currency:    string(e.Amount().Currency()),
		AccountType: string(e.AccountType()),
		Operation:   string(e.Operation()),
		Status:      string(e.Status()),
		CreatedAt:   timeToPgTimestamptz(e.CreatedAt()),
	}
}

func rowToEntry(row generated.Entry) domain.Entry {
	return domain.RestoreEntry(domain.EntryRecord{
		ID:          row.ID,
		AccountID:   row.AccountID,
		SourceID:    row.SourceID,
		Amount:      domain.NewMoney(row.Amount, domain.Currency(row.Currency)),
		CreatedAt:   row.CreatedAt.Time,
		AccountType: domain.AccountType(row.AccountType),
		Operation:   domain.Operation(row.Operation),
		Status:      domain.EntryStatus(row.Status),
	})
}

func rowsToEntries(rows []generated.Entry) []domain.Entry {
	entries := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
