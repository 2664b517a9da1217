package domain

import "time"

// Payment is an external payment credited to a user once accepted.
//
// A payment is either created or processed; the blocked flag is orthogonal and
// prevents processing. Accept emits exactly one entry and flips processed in
// the same step.
type Payment struct {
	id        string
	userID    string
	amount    Money
	createdAt time.Time
	processed bool
	blocked   bool
	entries   []Entry
}

// NewPayment creates an unprocessed, unblocked payment. The id is assigned by
// the caller so the payment has an identity before it is persisted.
func NewPayment(id, userID string, amount Money, createdAt time.Time) (*Payment, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	if err := ValidateOperationAmount(amount); err != nil {
		return nil, err
	}

	return &Payment{
		id:        id,
		userID:    userID,
		amount:    amount,
		createdAt: createdAt,
	}, nil
}

// RestorePayment rebuilds a payment loaded from storage.
func RestorePayment(id, userID string, amount Money, createdAt time.Time, processed, blocked bool) *Payment {
	return &Payment{
		id:        id,
		userID:    userID,
		amount:    amount,
		createdAt: createdAt,
		processed: processed,
		blocked:   blocked,
	}
}

func (p *Payment) ID() string           { return p.id }
func (p *Payment) UserID() string       { return p.userID }
func (p *Payment) Amount() Money        { return p.amount }
func (p *Payment) CreatedAt() time.Time { return p.createdAt }
func (p *Payment) IsProcessed() bool    { return p.processed }
func (p *Payment) IsBlocked() bool      { return p.blocked }

// Accept settles the payment into the user's ledger.
func (p *Payment) Accept(entryID string) error {
	if p.blocked {
		return ErrPaymentBlocked
	}

	if p.processed {
		return ErrPaymentAlreadyProcessed
	}

	if entryID == "" {
		return ErrMissingID
	}

	entry := newEntry(
		entryID,
		p.userID,
		p.id,
		p.amount,
		p.createdAt,
		AccountTypeUser,
		OperationPayment,
		EntryStatusAccepted,
	)

	p.processed = true
	p.entries = append(p.entries, entry)

	return nil
}

// Block prevents the payment from ever being processed. Blocking is one-way.
func (p *Payment) Block() {
	p.blocked = true
}

// Equal compares payments by identity. A payment without an id equals nothing.
func (p *Payment) Equal(other *Payment) bool {
	if p == nil || other == nil || p.id == "" {
		return false
	}

	return p.id == other.id
}

// Entries returns the entries produced since the last PullEntries.
func (p *Payment) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// PullEntries hands the pending entries to the persistence boundary and
// forgets them.
func (p *Payment) PullEntries() []Entry {
	entries := p.entries
	p.entries = nil

	return entries
}
