package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buyerID  = "0a8f3a2e-1d2b-4f7e-8a43-7a2f1c4b9e01"
	sellerID = "f3b1d8c2-5e6a-4c1d-9b7f-2e8a6d4c1f02"
)

func loadedMember(t *testing.T, id string, typ AccountType, balance int64) *Member {
	t.Helper()

	m, err := NewMember(id, typ, "", "RUB", time.Now())
	require.NoError(t, err)
	m.RestoreBalance(NewMoney(balance, "RUB"))

	return m
}

func TestNewMember_Validation(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		typ         AccountType
		synonym     string
		currency    Currency
		expectError error
	}{
		{name: "valid seller", userID: sellerID, typ: AccountTypeSeller, synonym: "best_shop", currency: "RUB"},
		{name: "invalid id", userID: "42", typ: AccountTypeUser, currency: "RUB", expectError: ErrInvalidUserID},
		{name: "invalid type", userID: buyerID, typ: "bank", currency: "RUB", expectError: ErrInvalidAccountType},
		{name: "bad synonym", userID: buyerID, typ: AccountTypeUser, synonym: "drop table;", currency: "RUB", expectError: ErrInvalidSynonym},
		{name: "bad currency", userID: buyerID, typ: AccountTypeUser, currency: "XXX", expectError: ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMember(tt.userID, tt.typ, tt.synonym, tt.currency, time.Now())
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}

			require.NoError(t, err)
			balance, err := m.Balance()
			require.NoError(t, err)
			assert.True(t, balance.IsZero())
		})
	}
}

func TestMember_BalanceNotLoaded(t *testing.T) {
	m := &Member{UserID: buyerID, Currency: "RUB"}

	_, err := m.Balance()
	assert.ErrorIs(t, err, ErrBalanceNotLoaded)
	assert.ErrorIs(t, m.Withdraw("w1", NewMoney(1, "RUB"), time.Now()), ErrBalanceNotLoaded)
}

func TestMember_Withdraw(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		amount      Money
		blocked     bool
		expectError error
		wantBalance int64
	}{
		{name: "partial", balance: 1000, amount: NewMoney(400, "RUB"), wantBalance: 600},
		{name: "exact balance", balance: 1000, amount: NewMoney(1000, "RUB"), wantBalance: 0},
		{name: "insufficient", balance: 1000, amount: NewMoney(1001, "RUB"), expectError: ErrInsufficientFunds, wantBalance: 1000},
		{name: "blocked", balance: 1000, amount: NewMoney(1, "RUB"), blocked: true, expectError: ErrMemberBlocked, wantBalance: 1000},
		{name: "wrong currency", balance: 1000, amount: NewMoney(1, "USD"), expectError: ErrCurrencyMismatch, wantBalance: 1000},
		{name: "zero amount", balance: 1000, amount: NewMoney(0, "RUB"), expectError: ErrInvalidAmount, wantBalance: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadedMember(t, sellerID, AccountTypeSeller, tt.balance)
			m.Blocked = tt.blocked

			err := m.Withdraw("w-1", tt.amount, time.Now())
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Empty(t, m.Entries())
			} else {
				require.NoError(t, err)
				entries := m.Entries()
				require.Len(t, entries, 1)
				assert.Equal(t, OperationWithdrawal, entries[0].Operation())
				assert.Equal(t, AccountTypeSeller, entries[0].AccountType())
				assert.Equal(t, tt.amount.Neg(), entries[0].Amount())
			}

			balance, err := m.Balance()
			require.NoError(t, err)
			assert.Equal(t, tt.wantBalance, balance.Amount())
		})
	}
}

func TestMember_TransferTo(t *testing.T) {
	buyer := loadedMember(t, buyerID, AccountTypeUser, 500)
	seller := loadedMember(t, sellerID, AccountTypeSeller, 100)

	require.NoError(t, buyer.TransferTo(seller, "tr-1", "d-1", "c-1", NewMoney(200, "RUB"), time.Now()))

	buyerBalance, _ := buyer.Balance()
	sellerBalance, _ := seller.Balance()
	assert.Equal(t, int64(300), buyerBalance.Amount())
	assert.Equal(t, int64(300), sellerBalance.Amount())

	debit := buyer.PullEntries()
	credit := seller.PullEntries()
	require.Len(t, debit, 1)
	require.Len(t, credit, 1)
	assert.Equal(t, int64(-200), debit[0].Amount().Amount())
	assert.Equal(t, int64(200), credit[0].Amount().Amount())
	assert.Equal(t, "tr-1", debit[0].SourceID())
	assert.Equal(t, "tr-1", credit[0].SourceID())

	// Debits and credits of one transfer cancel out.
	sum, err := debit[0].Amount().Add(credit[0].Amount())
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestMember_TransferToRejections(t *testing.T) {
	t.Run("same account", func(t *testing.T) {
		a := loadedMember(t, buyerID, AccountTypeUser, 500)
		assert.ErrorIs(t, a.TransferTo(a, "tr", "d", "c", NewMoney(1, "RUB"), time.Now()), ErrSameAccount)
	})

	t.Run("receiver blocked", func(t *testing.T) {
		a := loadedMember(t, buyerID, AccountTypeUser, 500)
		b := loadedMember(t, sellerID, AccountTypeSeller, 0)
		b.Block(time.Now())

		assert.ErrorIs(t, a.TransferTo(b, "tr", "d", "c", NewMoney(1, "RUB"), time.Now()), ErrMemberBlocked)
		assert.Empty(t, a.Entries())
		assert.Empty(t, b.Entries())
	})

	t.Run("insufficient funds", func(t *testing.T) {
		a := loadedMember(t, buyerID, AccountTypeUser, 5)
		b := loadedMember(t, sellerID, AccountTypeSeller, 0)

		assert.ErrorIs(t, a.TransferTo(b, "tr", "d", "c", NewMoney(6, "RUB"), time.Now()), ErrInsufficientFunds)
	})

	t.Run("receiver balance not loaded", func(t *testing.T) {
		a := loadedMember(t, buyerID, AccountTypeUser, 500)
		b := &Member{UserID: sellerID, Type: AccountTypeSeller, Currency: "RUB"}

		assert.ErrorIs(t, a.TransferTo(b, "tr", "d", "c", NewMoney(1, "RUB"), time.Now()), ErrBalanceNotLoaded)
	})
}

func TestMember_SetPayoutCard(t *testing.T) {
	m := loadedMember(t, sellerID, AccountTypeSeller, 0)

	require.NoError(t, m.SetPayoutCard("220220", "1234", time.Now()))
	assert.Equal(t, "220220", m.First6)
	assert.Equal(t, "1234", m.Last4)

	assert.ErrorIs(t, m.SetPayoutCard("22022", "1234", time.Now()), ErrInvalidCardFragment)
	assert.ErrorIs(t, m.SetPayoutCard("220220", "12a4", time.Now()), ErrInvalidCardFragment)
	assert.Equal(t, "1234", m.Last4)
}

func TestMember_BlockUnblock(t *testing.T) {
	m := loadedMember(t, buyerID, AccountTypeUser, 0)

	m.Block(time.Now())
	assert.True(t, m.Blocked)

	m.Unblock(time.Now())
	assert.False(t, m.Blocked)
}
