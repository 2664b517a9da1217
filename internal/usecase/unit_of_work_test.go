package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
	"github.com/iho/tradeledger/internal/usecase/gomocks"
)

func TestUnitOfWork_CommitsOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := gomocks.NewMockTransactionManager(ctrl)
	tx := gomocks.NewMockTransaction(ctrl)
	observer := gomocks.NewMockObserver(ctrl)

	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	observer.EXPECT().ObserveUnitOfWork("op", usecase.OutcomeCommitted, gomock.Any())

	uow := usecase.NewUnitOfWork(txMgr, usecase.WithObserver(observer))

	called := false
	err := uow.Do(context.Background(), "op", func(ctx context.Context, got usecase.Transaction) error {
		called = true
		assert.Equal(t, tx, got)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestUnitOfWork_DomainErrorRollsBackAndPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := gomocks.NewMockTransactionManager(ctrl)
	tx := gomocks.NewMockTransaction(ctrl)
	observer := gomocks.NewMockObserver(ctrl)

	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	observer.EXPECT().ObserveUnitOfWork("accept", usecase.OutcomeRejected, gomock.Any())

	uow := usecase.NewUnitOfWork(txMgr, usecase.WithObserver(observer))

	err := uow.Do(context.Background(), "accept", func(context.Context, usecase.Transaction) error {
		return domain.ErrPaymentAlreadyProcessed
	})

	assert.Same(t, domain.ErrPaymentAlreadyProcessed, err)
}

func TestUnitOfWork_InfrastructureErrorIsWrapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := gomocks.NewMockTransactionManager(ctrl)
	tx := gomocks.NewMockTransaction(ctrl)

	cause := errors.New("connection reset")

	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uow := usecase.NewUnitOfWork(txMgr)

	err := uow.Do(context.Background(), "op", func(context.Context, usecase.Transaction) error {
		return cause
	})

	var infra *usecase.InfrastructureError
	require.ErrorAs(t, err, &infra)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, usecase.KindInfrastructure, usecase.Classify(err))
}

func TestUnitOfWork_CommitFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := gomocks.NewMockTransactionManager(ctrl)
	tx := gomocks.NewMockTransaction(ctrl)
	observer := gomocks.NewMockObserver(ctrl)

	commitErr := errors.New("commit failed")

	gomock.InOrder(
		txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil),
		tx.EXPECT().Commit(gomock.Any()).Return(commitErr),
		tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)
	observer.EXPECT().ObserveUnitOfWork("op", usecase.OutcomeFailed, gomock.Any())

	uow := usecase.NewUnitOfWork(txMgr, usecase.WithObserver(observer))

	err := uow.Do(context.Background(), "op", func(context.Context, usecase.Transaction) error {
		return nil
	})

	assert.ErrorIs(t, err, commitErr)
	assert.Equal(t, usecase.KindInfrastructure, usecase.Classify(err))
}

func TestUnitOfWork_BeginFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := gomocks.NewMockTransactionManager(ctrl)

	beginErr := errors.New("pool exhausted")
	txMgr.EXPECT().Begin(gomock.Any()).Return(nil, beginErr)

	uow := usecase.NewUnitOfWork(txMgr)

	called := false
	err := uow.Do(context.Background(), "op", func(context.Context, usecase.Transaction) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, beginErr)
	assert.False(t, called)
}

func TestUnitOfWork_RetrierRerunsWholeClosure(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := gomocks.NewMockTransactionManager(ctrl)
	retrier := gomocks.NewMockRetrier(ctrl)
	first := gomocks.NewMockTransaction(ctrl)
	second := gomocks.NewMockTransaction(ctrl)

	transient := errors.New("deadlock detected")

	gomock.InOrder(
		txMgr.EXPECT().Begin(gomock.Any()).Return(first, nil),
		first.EXPECT().Rollback(gomock.Any()).Return(nil),
		txMgr.EXPECT().Begin(gomock.Any()).Return(second, nil),
		second.EXPECT().Commit(gomock.Any()).Return(nil),
	)

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, operation func() error) error {
			if err := operation(); err == nil {
				return nil
			}
			return operation()
		},
	)

	uow := usecase.NewUnitOfWork(txMgr, usecase.WithRetrier(retrier))

	attempts := 0
	err := uow.Do(context.Background(), "op", func(context.Context, usecase.Transaction) error {
		attempts++
		if attempts == 1 {
			return transient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestUnitOfWork_TimeoutAppliesToContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := gomocks.NewMockTransactionManager(ctrl)
	tx := gomocks.NewMockTransaction(ctrl)

	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uow := usecase.NewUnitOfWork(txMgr, usecase.WithTimeout(10*time.Millisecond))

	err := uow.Do(context.Background(), "op", func(ctx context.Context, _ usecase.Transaction) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, usecase.KindInfrastructure, usecase.Classify(err))
}
