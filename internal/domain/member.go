package domain

import "time"

// Member is an account holder of the trade ledger: a buyer (user) or a seller.
// The balance is never stored; repositories attach it when they load the
// member together with the sum of its accepted entries.
type Member struct {
	UserID    string
	Type      AccountType
	Synonym   string
	First6    string
	Last4     string
	Blocked   bool
	Currency  Currency
	CreatedAt time.Time
	UpdatedAt time.Time

	balance       Money
	balanceLoaded bool
	entries       []Entry
}

// NewMember registers a new account holder with an empty ledger.
func NewMember(userID string, accountType AccountType, synonym string, currency Currency, now time.Time) (*Member, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	if !accountType.IsValid() {
		return nil, ErrInvalidAccountType
	}

	if err := ValidateSynonym(synonym); err != nil {
		return nil, err
	}

	if err := ValidateCurrency(string(currency)); err != nil {
		return nil, err
	}

	return &Member{
		UserID:        userID,
		Type:          accountType,
		Synonym:       synonym,
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
		balance:       Zero(currency),
		balanceLoaded: true,
	}, nil
}

// RestoreBalance attaches a balance computed from accepted entries. Only
// repositories that ran the balance projection call it.
func (m *Member) RestoreBalance(balance Money) {
	m.balance = balance
	m.balanceLoaded = true
}

// Balance returns the balance attached at load time plus the effect of
// operations performed since.
func (m *Member) Balance() (Money, error) {
	if !m.balanceLoaded {
		return Money{}, ErrBalanceNotLoaded
	}

	return m.balance, nil
}

// HasBalance reports whether the member was loaded with its balance.
func (m *Member) HasBalance() bool {
	return m.balanceLoaded
}

func (m *Member) Block(now time.Time) {
	m.Blocked = true
	m.UpdatedAt = now
}

func (m *Member) Unblock(now time.Time) {
	m.Blocked = false
	m.UpdatedAt = now
}

// SetPayoutCard stores the masked payout card: first six and last four digits.
func (m *Member) SetPayoutCard(first6, last4 string, now time.Time) error {
	if err := validateDigits(first6, 6); err != nil {
		return err
	}

	if err := validateDigits(last4, 4); err != nil {
		return err
	}

	m.First6 = first6
	m.Last4 = last4
	m.UpdatedAt = now

	return nil
}

// Withdraw debits amount from the member's ledger for an external payout.
func (m *Member) Withdraw(entryID string, amount Money, now time.Time) error {
	if entryID == "" {
		return ErrMissingID
	}

	if m.Blocked {
		return ErrMemberBlocked
	}

	if err := m.checkDebit(amount); err != nil {
		return err
	}

	newBalance, err := m.balance.Sub(amount)
	if err != nil {
		return err
	}

	entry := newEntry(entryID, m.UserID, entryID, amount.Neg(), now, m.Type, OperationWithdrawal, EntryStatusAccepted)

	m.balance = newBalance
	m.entries = append(m.entries, entry)

	return nil
}

// TransferTo moves amount from m to another member as one trade settlement.
// The debit and the credit entry share transferID as their source.
func (m *Member) TransferTo(to *Member, transferID, debitEntryID, creditEntryID string, amount Money, now time.Time) error {
	if transferID == "" || debitEntryID == "" || creditEntryID == "" {
		return ErrMissingID
	}

	if m.UserID == to.UserID {
		return ErrSameAccount
	}

	if m.Blocked || to.Blocked {
		return ErrMemberBlocked
	}

	if m.Currency != to.Currency {
		return ErrCurrencyMismatch
	}

	if !to.balanceLoaded {
		return ErrBalanceNotLoaded
	}

	if err := m.checkDebit(amount); err != nil {
		return err
	}

	fromBalance, err := m.balance.Sub(amount)
	if err != nil {
		return err
	}

	toBalance, err := to.balance.Add(amount)
	if err != nil {
		return err
	}

	debit := newEntry(debitEntryID, m.UserID, transferID, amount.Neg(), now, m.Type, OperationTransfer, EntryStatusAccepted)
	credit := newEntry(creditEntryID, to.UserID, transferID, amount, now, to.Type, OperationTransfer, EntryStatusAccepted)

	m.balance = fromBalance
	m.entries = append(m.entries, debit)
	to.balance = toBalance
	to.entries = append(to.entries, credit)

	return nil
}

func (m *Member) checkDebit(amount Money) error {
	if !m.balanceLoaded {
		return ErrBalanceNotLoaded
	}

	if amount.Currency() != m.Currency {
		return ErrCurrencyMismatch
	}

	if err := ValidateOperationAmount(amount); err != nil {
		return err
	}

	cmp, err := m.balance.Cmp(amount)
	if err != nil {
		return err
	}

	if cmp < 0 {
		return ErrInsufficientFunds
	}

	return nil
}

// Entries returns the entries produced since the last PullEntries.
func (m *Member) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// PullEntries hands the pending entries to the persistence boundary and
// forgets them.
func (m *Member) PullEntries() []Entry {
	entries := m.entries
	m.entries = nil

	return entries
}
