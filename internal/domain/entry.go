package domain

import "time"

// AccountType identifies which side of a trade an entry belongs to.
type AccountType string

const (
	AccountTypeUser   AccountType = "user"
	AccountTypeSeller AccountType = "seller"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	return t == AccountTypeUser || t == AccountTypeSeller
}

// Operation is the kind of movement an entry records.
type Operation string

const (
	OperationPayment    Operation = "payment"
	OperationTransfer   Operation = "transfer"
	OperationRefund     Operation = "refund"
	OperationWithdrawal Operation = "withdrawal"
)

// EntryStatus is the settlement status of an entry. Only accepted entries
// count toward a balance.
type EntryStatus string

const (
	EntryStatusAccepted EntryStatus = "accepted"
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusReversed EntryStatus = "reversed"
)

// Entry is an immutable ledger record of one monetary movement against one
// account. Entries are produced by aggregate operations; corrections are new
// offsetting entries.
type Entry struct {
	id          string
	accountID   string
	sourceID    string
	amount      Money
	createdAt   time.Time
	accountType AccountType
	operation   Operation
	status      EntryStatus
}

func newEntry(
	id, accountID, sourceID string,
	amount Money,
	createdAt time.Time,
	accountType AccountType,
	operation Operation,
	status EntryStatus,
) Entry {
	return Entry{
		id:          id,
		accountID:   accountID,
		sourceID:    sourceID,
		amount:      amount,
		createdAt:   createdAt,
		accountType: accountType,
		operation:   operation,
		status:      status,
	}
}

// EntryRecord is the persisted shape of an entry.
type EntryRecord struct {
	ID          string
	AccountID   string
	SourceID    string
	Amount      Money
	CreatedAt   time.Time
	AccountType AccountType
	Operation   Operation
	Status      EntryStatus
}

// RestoreEntry rebuilds an entry loaded from storage.
func RestoreEntry(r EntryRecord) Entry {
	return newEntry(r.ID, r.AccountID, r.SourceID, r.Amount, r.CreatedAt, r.AccountType, r.Operation, r.Status)
}

// Record returns the persisted shape of the entry.
func (e Entry) Record() EntryRecord {
	return EntryRecord{
		ID:          e.id,
		AccountID:   e.accountID,
		SourceID:    e.sourceID,
		Amount:      e.amount,
		CreatedAt:   e.createdAt,
		AccountType: e.accountType,
		Operation:   e.operation,
		Status:      e.status,
	}
}

func (e Entry) ID() string               { return e.id }
func (e Entry) AccountID() string        { return e.accountID }
func (e Entry) SourceID() string         { return e.sourceID }
func (e Entry) Amount() Money            { return e.amount }
func (e Entry) CreatedAt() time.Time     { return e.createdAt }
func (e Entry) AccountType() AccountType { return e.accountType }
func (e Entry) Operation() Operation     { return e.operation }
func (e Entry) Status() EntryStatus      { return e.status }

// Counts reports whether the entry contributes to its account balance.
func (e Entry) Counts() bool {
	return e.status == EntryStatusAccepted
}

// SumBalance folds the accepted entries of accountID into a balance.
func SumBalance(accountID string, currency Currency, entries []Entry) (Money, error) {
	balance := Zero(currency)
	for _, e := range entries {
		if e.accountID != accountID || !e.Counts() {
			continue
		}

		var err error
		balance, err = balance.Add(e.amount)
		if err != nil {
			return Money{}, err
		}
	}

	return balance, nil
}
