package usecase_test

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

func (f *fixture) transferUseCase() *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(f.uow, f.members, f.idGen, f.notifier)
}

func TestTransferUseCase_Transfer(t *testing.T) {
	tests := []struct {
		name        string
		from, to    string
		amount      domain.Money
		blockTo     bool
		expectError error
		wantFrom    int64
		wantTo      int64
	}{
		{
			name:     "successful transfer",
			from:     buyerID,
			to:       sellerID,
			amount:   domain.NewMoney(400, "RUB"),
			wantFrom: 600,
			wantTo:   400,
		},
		{
			name:        "reject same account transfer",
			from:        buyerID,
			to:          buyerID,
			amount:      domain.NewMoney(100, "RUB"),
			expectError: domain.ErrSameAccount,
			wantFrom:    1000,
		},
		{
			name:        "reject insufficient funds",
			from:        buyerID,
			to:          sellerID,
			amount:      domain.NewMoney(1001, "RUB"),
			expectError: domain.ErrInsufficientFunds,
			wantFrom:    1000,
		},
		{
			name:        "reject currency mismatch",
			from:        buyerID,
			to:          sellerID,
			amount:      domain.NewMoney(100, "USD"),
			expectError: domain.ErrCurrencyMismatch,
			wantFrom:    1000,
		},
		{
			name:        "reject blocked receiver",
			from:        buyerID,
			to:          sellerID,
			amount:      domain.NewMoney(100, "RUB"),
			blockTo:     true,
			expectError: domain.ErrMemberBlocked,
			wantFrom:    1000,
		},
		{
			name:        "reject unknown receiver",
			from:        buyerID,
			to:          ghostID,
			amount:      domain.NewMoney(100, "RUB"),
			expectError: domain.ErrMemberNotFound,
			wantFrom:    1000,
		},
		{
			name:        "reject negative amount",
			from:        buyerID,
			to:          sellerID,
			amount:      domain.NewMoney(-1, "RUB"),
			expectError: domain.ErrInvalidAmount,
			wantFrom:    1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addMember(t, buyerID, domain.AccountTypeUser)
			f.addMember(t, sellerID, domain.AccountTypeSeller)
			f.credit(t, buyerID, 1000)

			if tt.blockTo {
				_, err := f.memberUseCase().BlockMember(context.Background(), tt.to)
				require.NoError(t, err)
			}

			result, err := f.transferUseCase().Transfer(context.Background(), usecase.TransferInput{
				FromUserID: tt.from,
				ToUserID:   tt.to,
				Amount:     tt.amount,
			})

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantFrom, result.FromBalance.Amount())
				assert.Equal(t, tt.wantTo, result.ToBalance.Amount())
				assert.Equal(t, result.TransferID, result.Debit.SourceID())
				assert.Equal(t, result.TransferID, result.Credit.SourceID())
				assert.Equal(t, domain.AccountTypeSeller, result.Credit.AccountType())

				bySource, err := f.entries.ListBySource(context.Background(), result.TransferID)
				require.NoError(t, err)
				assert.Len(t, bySource, 2)
			}

			assert.Equal(t, tt.wantFrom, f.balance(t, buyerID))
			assert.Equal(t, tt.wantTo, f.balance(t, sellerID))
		})
	}
}

func TestTransferUseCase_LocksInSortedOrder(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, buyerID, domain.AccountTypeUser)
	f.addMember(t, sellerID, domain.AccountTypeSeller)
	f.credit(t, buyerID, 1000)
	f.members.LockedIDs = nil

	_, err := f.transferUseCase().Transfer(context.Background(), usecase.TransferInput{
		FromUserID: buyerID,
		ToUserID:   sellerID,
		Amount:     domain.NewMoney(10, "RUB"),
	})
	require.NoError(t, err)

	// sender id sorts after receiver id
	_, err = f.transferUseCase().Transfer(context.Background(), usecase.TransferInput{
		FromUserID: sellerID,
		ToUserID:   buyerID,
		Amount:     domain.NewMoney(5, "RUB"),
	})
	require.NoError(t, err)

	require.Len(t, f.members.LockedIDs, 4)
	assert.True(t, sort.StringsAreSorted(f.members.LockedIDs[:2]))
	assert.True(t, sort.StringsAreSorted(f.members.LockedIDs[2:]))
}

func TestTransferUseCase_RequiresLoadedBalances(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, buyerID, domain.AccountTypeUser)
	f.addMember(t, sellerID, domain.AccountTypeSeller)
	f.credit(t, buyerID, 1000)

	f.members.WithBalancesAndIDsForUpdateFunc = func(ctx context.Context, _ usecase.Transaction, ids []string) ([]*domain.Member, error) {
		var members []*domain.Member
		for _, id := range ids {
			m, err := f.members.WithID(ctx, id)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		return members, nil
	}

	result, err := f.transferUseCase().Transfer(context.Background(), usecase.TransferInput{
		FromUserID: buyerID,
		ToUserID:   sellerID,
		Amount:     domain.NewMoney(100, "RUB"),
	})
	assert.ErrorIs(t, err, domain.ErrBalanceNotLoaded)
	assert.Nil(t, result)

	assert.Equal(t, int64(1000), f.balance(t, buyerID))
	assert.Equal(t, int64(0), f.balance(t, sellerID))
}
