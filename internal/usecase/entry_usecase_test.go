package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

func TestEntryUseCase_ListByAccountClampsLimit(t *testing.T) {
	f := newFixture(t)

	var gotLimit, gotOffset int
	f.entries.ListByAccountFunc = func(_ context.Context, _ string, limit, offset int) ([]domain.Entry, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}

	uc := usecase.NewEntryUseCase(f.entries, f.members)

	_, err := uc.ListByAccount(context.Background(), usecase.ListEntriesInput{AccountID: buyerID, Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, usecase.MaxPageLimit, gotLimit)
	assert.Equal(t, 0, gotOffset)
}

func TestEntryUseCase_ListByAccountError(t *testing.T) {
	f := newFixture(t)
	f.entries.ListByAccountFunc = func(context.Context, string, int, int) ([]domain.Entry, error) {
		return nil, errors.New("db down")
	}

	_, err := usecase.NewEntryUseCase(f.entries, f.members).ListByAccount(context.Background(), usecase.ListEntriesInput{AccountID: buyerID})
	assert.Equal(t, usecase.KindInfrastructure, usecase.Classify(err))
}

func TestEntryUseCase_BalanceAt(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, buyerID, domain.AccountTypeUser)

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.entries.Append(
		domain.RestoreEntry(domain.EntryRecord{
			ID: "e1", AccountID: buyerID, SourceID: "p1", Amount: domain.NewMoney(100, "RUB"),
			CreatedAt: t0, AccountType: domain.AccountTypeUser,
			Operation: domain.OperationPayment, Status: domain.EntryStatusAccepted,
		}),
		domain.RestoreEntry(domain.EntryRecord{
			ID: "e2", AccountID: buyerID, SourceID: "w1", Amount: domain.NewMoney(-40, "RUB"),
			CreatedAt: t0.Add(48 * time.Hour), AccountType: domain.AccountTypeUser,
			Operation: domain.OperationWithdrawal, Status: domain.EntryStatusAccepted,
		}),
	)

	uc := usecase.NewEntryUseCase(f.entries, f.members)

	before, err := uc.BalanceAt(context.Background(), buyerID, t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(100), before.Amount())

	after, err := uc.BalanceAt(context.Background(), buyerID, t0.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(60), after.Amount())

	_, err = uc.BalanceAt(context.Background(), ghostID, t0)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestEntryUseCase_BalanceAtDatesPaymentCreditAtCreation(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, buyerID, domain.AccountTypeUser)

	created := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	p, err := domain.NewPayment("pay-old", buyerID, domain.NewMoney(500, "RUB"), created)
	require.NoError(t, err)
	f.payments.Put(p)

	_, err = f.paymentUseCase().AcceptPayment(context.Background(), "pay-old")
	require.NoError(t, err)

	uc := usecase.NewEntryUseCase(f.entries, f.members)

	beforeCreation, err := uc.BalanceAt(context.Background(), buyerID, created.Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, beforeCreation.IsZero())

	// Still earlier than the acceptance, yet the credit is already counted.
	beforeAcceptance, err := uc.BalanceAt(context.Background(), buyerID, created.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(500), beforeAcceptance.Amount())
}

func TestEntryUseCase_ListBySource(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, buyerID, domain.AccountTypeUser)
	f.credit(t, buyerID, 70)

	uc := usecase.NewEntryUseCase(f.entries, f.members)

	all := f.entries.All()
	require.Len(t, all, 1)

	entries, err := uc.ListBySource(context.Background(), all[0].SourceID())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
