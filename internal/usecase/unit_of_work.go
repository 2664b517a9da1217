package usecase

import (
	"context"
	"time"
)

// UnitOfWork runs a closure inside one database transaction: begin, run,
// commit. Any error from the closure or from commit rolls the transaction
// back. Domain errors are returned unchanged, everything else is wrapped in
// *InfrastructureError.
type UnitOfWork struct {
	txManager TransactionManager
	retrier   Retrier
	observer  Observer
	timeout   time.Duration
}

// UnitOfWorkOption configures a UnitOfWork.
type UnitOfWorkOption func(*UnitOfWork)

// WithRetrier re-runs the whole closure on transient failures.
func WithRetrier(r Retrier) UnitOfWorkOption {
	return func(u *UnitOfWork) { u.retrier = r }
}

// WithObserver reports each unit of work to o.
func WithObserver(o Observer) UnitOfWorkOption {
	return func(u *UnitOfWork) { u.observer = o }
}

// WithTimeout bounds each unit of work.
func WithTimeout(d time.Duration) UnitOfWorkOption {
	return func(u *UnitOfWork) { u.timeout = d }
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(txManager TransactionManager, opts ...UnitOfWorkOption) *UnitOfWork {
	u := &UnitOfWork{
		txManager: txManager,
		timeout:   DefaultTransactionTimeout,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Do executes fn in a transaction named op.
func (u *UnitOfWork) Do(ctx context.Context, op string, fn func(ctx context.Context, tx Transaction) error) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	attempt := func() error {
		return u.attempt(ctx, op, fn)
	}

	var err error
	if u.retrier != nil {
		err = u.retrier.Retry(ctx, attempt)
	} else {
		err = attempt()
	}

	if err != nil && !IsDomainError(err) {
		if _, ok := err.(*InfrastructureError); !ok {
			err = &InfrastructureError{Op: op, Err: err}
		}
	}

	if u.observer != nil {
		u.observer.ObserveUnitOfWork(op, outcomeOf(err), time.Since(start))
	}

	return err
}

func (u *UnitOfWork) attempt(ctx context.Context, op string, fn func(ctx context.Context, tx Transaction) error) error {
	tx, err := u.txManager.Begin(ctx)
	if err != nil {
		return &InfrastructureError{Op: op + ": begin", Err: err}
	}

	if err := fn(ctx, tx); err != nil {
		rollback(ctx, tx)

		if IsDomainError(err) {
			return err
		}

		return &InfrastructureError{Op: op, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		rollback(ctx, tx)
		return &InfrastructureError{Op: op + ": commit", Err: err}
	}

	return nil
}

// rollback must run even when ctx is already done.
func rollback(ctx context.Context, tx Transaction) {
	_ = tx.Rollback(context.WithoutCancel(ctx))
}
