package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/tradeledger/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	queries *generated.Queries
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return newPaymentRepository(pool)
}

func newPaymentRepository(db generated.DBTX) *PaymentRepository {
	return &PaymentRepository{queries: generated.New(db)}
}

// Add inserts a new payment.
func (r *PaymentRepository) Add(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	q := txQueries(tx)

	err := q.CreatePayment(ctx, generated.CreatePaymentParams{
		ID:          payment.ID(),
		UserID:      payment.UserID(),
		Amount:      payment.Amount().Amount(),
		Currency:    string(payment.Amount().Currency()),
		IsProcessed: payment.IsProcessed(),
		IsBlocked:   payment.IsBlocked(),
		CreatedAt:   timeToPgTimestamptz(payment.CreatedAt()),
	})
	if err != nil {
		return err
	}

	return insertEntries(ctx, q, payment.PullEntries())
}

// WithID loads a payment.
func (r *PaymentRepository) WithID(ctx context.Context, id string) (*domain.Payment, error) {
	row, err := r.queries.GetPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rowToPayment(row), nil
}

// WithIDForUpdate loads a payment and locks its row until tx ends.
func (r *PaymentRepository) WithIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	row, err := txQueries(tx).GetPaymentByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rowToPayment(row), nil
}

// Save writes payment flags and inserts the entries pulled from it. A second
// payment entry for the same payment violates uq_entries_payment_source and
// surfaces as domain.ErrPaymentAlreadyProcessed.
func (r *PaymentRepository) Save(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	q := txQueries(tx)

	err := q.UpdatePaymentFlags(ctx, generated.UpdatePaymentFlagsParams{
		ID:          payment.ID(),
		IsProcessed: payment.IsProcessed(),
		IsBlocked:   payment.IsBlocked(),
	})
	if err != nil {
		return err
	}

	if err := insertEntries(ctx, q, payment.PullEntries()); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPaymentAlreadyProcessed
		}

		return err
	}

	return nil
}

// ListByUser lists a member's payments, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error) {
	rows, err := r.queries.ListPaymentsByUser(ctx, generated.ListPaymentsByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	payments := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, rowToPayment(row))
	}

	return payments, nil
}

func rowToPayment(row generated.Payment) *domain.Payment {
	return domain.RestorePayment(
		row.ID,
		row.UserID,
		domain.NewMoney(row.Amount, domain.Currency(row.Currency)),
		row.CreatedAt.Time,
		row.IsProcessed,
		row.IsBlocked,
	)
}
