package usecase

import (
	"context"
	"time"

	"github.com/iho/tradeledger/internal/domain"
)

// MemberRepository defines data access for account holders.
//
// Lookups return (nil, nil) when the member does not exist. Methods named
// WithBalance... attach the sum of accepted entries to the loaded member.
type MemberRepository interface {
	Add(ctx context.Context, tx Transaction, member *domain.Member) error
	WithID(ctx context.Context, id string) (*domain.Member, error)
	WithBalanceAndID(ctx context.Context, id string) (*domain.Member, error)
	// WithBalanceAndIDForUpdate locks the member row until tx ends and reads
	// the balance under that lock in the same statement.
	WithBalanceAndIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Member, error)
	// WithBalancesAndIDsForUpdate locks several members in ascending id order.
	WithBalancesAndIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Member, error)
	// Save persists member flags and inserts the entries pulled from it.
	Save(ctx context.Context, tx Transaction, member *domain.Member) error
	List(ctx context.Context, limit, offset int) ([]*domain.Member, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Add(ctx context.Context, tx Transaction, payment *domain.Payment) error
	WithID(ctx context.Context, id string) (*domain.Payment, error)
	WithIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Payment, error)
	// Save persists payment flags and inserts the entries pulled from it.
	Save(ctx context.Context, tx Transaction, payment *domain.Payment) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error)
}

// EntryRepository defines read access to the entry log. Entries are only
// written through the aggregate repositories.
type EntryRepository interface {
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Entry, error)
	ListBySource(ctx context.Context, sourceID string) ([]domain.Entry, error)
	BalanceAt(ctx context.Context, accountID string, currency domain.Currency, at time.Time) (domain.Money, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (ConsistencyReport, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Notifier receives events after the unit of work that produced them has
// committed. Implementations must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event)
}

// IdempotentResponse is the stored outcome of a request made with an
// idempotency key. Pending is set while the first request is still running.
type IdempotentResponse struct {
	Fingerprint string `json:"fingerprint"`
	Pending     bool   `json:"pending"`
	StatusCode  int    `json:"status_code,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore records responses by idempotency key.
type IdempotencyStore interface {
	// Reserve atomically claims key for a request with the given fingerprint.
	// When the key is already taken it returns the stored record and false.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*IdempotentResponse, bool, error)
	// Complete stores the final response for a reserved key.
	Complete(ctx context.Context, key string, resp IdempotentResponse, ttl time.Duration) error
	// Release drops a reservation so the request can be retried.
	Release(ctx context.Context, key string) error
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, domain.Event) {}
