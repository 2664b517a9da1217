package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

// MockEntryRepository is an in-memory entry log shared by the member and
// payment mocks.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []domain.Entry

	ListByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]domain.Entry, error)
	ListBySourceFunc  func(ctx context.Context, sourceID string) ([]domain.Entry, error)
	BalanceAtFunc     func(ctx context.Context, accountID string, currency domain.Currency, at time.Time) (domain.Money, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

// Append stores entries directly, bypassing transactions.
func (m *MockEntryRepository) Append(entries ...domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
}

// All returns every stored entry.
func (m *MockEntryRepository) All() []domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Entry(nil), m.entries...)
}

func (m *MockEntryRepository) balance(accountID string, currency domain.Currency) (domain.Money, error) {
	return domain.SumBalance(accountID, currency, m.All())
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	var result []domain.Entry
	for _, e := range m.All() {
		if e.AccountID() == accountID {
			result = append(result, e)
		}
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockEntryRepository) ListBySource(ctx context.Context, sourceID string) ([]domain.Entry, error) {
	if m.ListBySourceFunc != nil {
		return m.ListBySourceFunc(ctx, sourceID)
	}
	var result []domain.Entry
	for _, e := range m.All() {
		if e.SourceID() == sourceID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MockEntryRepository) BalanceAt(ctx context.Context, accountID string, currency domain.Currency, at time.Time) (domain.Money, error) {
	if m.BalanceAtFunc != nil {
		return m.BalanceAtFunc(ctx, accountID, currency, at)
	}
	var upTo []domain.Entry
	for _, e := range m.All() {
		if !e.CreatedAt().After(at) {
			upTo = append(upTo, e)
		}
	}
	return domain.SumBalance(accountID, currency, upTo)
}

// MockMemberRepository is an in-memory MemberRepository. Writes made through
// a *MockTransaction become visible on commit only.
type MockMemberRepository struct {
	mu      sync.RWMutex
	members map[string]domain.Member
	entries *MockEntryRepository

	AddFunc                         func(ctx context.Context, tx usecase.Transaction, member *domain.Member) error
	WithIDFunc                      func(ctx context.Context, id string) (*domain.Member, error)
	WithBalanceAndIDFunc            func(ctx context.Context, id string) (*domain.Member, error)
	WithBalanceAndIDForUpdateFunc   func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error)
	WithBalancesAndIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Member, error)
	SaveFunc                        func(ctx context.Context, tx usecase.Transaction, member *domain.Member) error
	ListFunc                        func(ctx context.Context, limit, offset int) ([]*domain.Member, error)

	// LockedIDs records every id passed to a locking read, in call order.
	LockedIDs []string
}

func NewMockMemberRepository(entries *MockEntryRepository) *MockMemberRepository {
	return &MockMemberRepository{
		members: make(map[string]domain.Member),
		entries: entries,
	}
}

// Put stores a member directly, bypassing transactions.
func (m *MockMemberRepository) Put(member *domain.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.UserID] = *member
}

func (m *MockMemberRepository) Add(ctx context.Context, tx usecase.Transaction, member *domain.Member) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, tx, member)
	}
	m.mu.RLock()
	_, exists := m.members[member.UserID]
	m.mu.RUnlock()
	if exists {
		return domain.ErrMemberExists
	}
	stored := *member
	onCommit(tx, func() { m.Put(&stored) })
	return nil
}

func (m *MockMemberRepository) WithID(ctx context.Context, id string) (*domain.Member, error) {
	if m.WithIDFunc != nil {
		return m.WithIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.members[id]
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (m *MockMemberRepository) WithBalanceAndID(ctx context.Context, id string) (*domain.Member, error) {
	if m.WithBalanceAndIDFunc != nil {
		return m.WithBalanceAndIDFunc(ctx, id)
	}
	member, err := m.WithID(ctx, id)
	if err != nil || member == nil {
		return member, err
	}
	balance, err := m.entries.balance(id, member.Currency)
	if err != nil {
		return nil, err
	}
	member.RestoreBalance(balance)
	return member, nil
}

func (m *MockMemberRepository) WithBalanceAndIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error) {
	m.mu.Lock()
	m.LockedIDs = append(m.LockedIDs, id)
	m.mu.Unlock()
	if m.WithBalanceAndIDForUpdateFunc != nil {
		return m.WithBalanceAndIDForUpdateFunc(ctx, tx, id)
	}
	return m.WithBalanceAndID(ctx, id)
}

func (m *MockMemberRepository) WithBalancesAndIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Member, error) {
	if m.WithBalancesAndIDsForUpdateFunc != nil {
		return m.WithBalancesAndIDsForUpdateFunc(ctx, tx, ids)
	}
	var members []*domain.Member
	for _, id := range ids {
		member, err := m.WithBalanceAndIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if member != nil {
			members = append(members, member)
		}
	}
	return members, nil
}

func (m *MockMemberRepository) Save(ctx context.Context, tx usecase.Transaction, member *domain.Member) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, member)
	}
	entries := member.PullEntries()
	stored := *member
	onCommit(tx, func() {
		m.Put(&stored)
		m.entries.Append(entries...)
	})
	return nil
}

func (m *MockMemberRepository) List(ctx context.Context, limit, offset int) ([]*domain.Member, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.members))
	for id := range m.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var members []*domain.Member
	for _, id := range ids {
		stored := m.members[id]
		members = append(members, &stored)
	}
	if offset >= len(members) {
		return nil, nil
	}
	members = members[offset:]
	if len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

// MockPaymentRepository is an in-memory PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
	entries  *MockEntryRepository

	AddFunc             func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
	WithIDFunc          func(ctx context.Context, id string) (*domain.Payment, error)
	WithIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error)
	SaveFunc            func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
	ListByUserFunc      func(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error)
}

func NewMockPaymentRepository(entries *MockEntryRepository) *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
		entries:  entries,
	}
}

// Put stores a payment directly, bypassing transactions.
func (m *MockPaymentRepository) Put(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID()] = clonePayment(p)
}

func (m *MockPaymentRepository) Add(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, tx, payment)
	}
	stored := clonePayment(payment)
	onCommit(tx, func() { m.Put(stored) })
	return nil
}

func (m *MockPaymentRepository) WithID(ctx context.Context, id string) (*domain.Payment, error) {
	if m.WithIDFunc != nil {
		return m.WithIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		return clonePayment(p), nil
	}
	return nil, nil
}

func (m *MockPaymentRepository) WithIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	if m.WithIDForUpdateFunc != nil {
		return m.WithIDForUpdateFunc(ctx, tx, id)
	}
	return m.WithID(ctx, id)
}

func (m *MockPaymentRepository) Save(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, payment)
	}
	entries := payment.PullEntries()
	stored := clonePayment(payment)
	onCommit(tx, func() {
		m.Put(stored)
		m.entries.Append(entries...)
	})
	return nil
}

func (m *MockPaymentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []*domain.Payment
	for _, p := range m.payments {
		if p.UserID() == userID {
			payments = append(payments, clonePayment(p))
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID() < payments[j].ID() })
	return payments, nil
}

func clonePayment(p *domain.Payment) *domain.Payment {
	return domain.RestorePayment(p.ID(), p.UserID(), p.Amount(), p.CreatedAt(), p.IsProcessed(), p.IsBlocked())
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	CheckConsistencyFunc func(ctx context.Context) (usecase.ConsistencyReport, error)
}

func (m *MockLedgerRepository) CheckConsistency(ctx context.Context) (usecase.ConsistencyReport, error) {
	if m.CheckConsistencyFunc != nil {
		return m.CheckConsistencyFunc(ctx)
	}
	return usecase.ConsistencyReport{}, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu  sync.Mutex
	txs []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	// CommitFunc, when set, is installed on every transaction begun.
	CommitFunc func(ctx context.Context) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{CommitFunc: m.CommitFunc}
	m.mu.Lock()
	m.txs = append(m.txs, tx)
	m.mu.Unlock()
	return tx, nil
}

// Transactions returns every transaction begun so far.
func (m *MockTransactionManager) Transactions() []*MockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockTransaction(nil), m.txs...)
}

// MockTransaction is a mock implementation of Transaction. Repository mocks
// stage their writes on it; the writes apply on a successful Commit.
type MockTransaction struct {
	mu      sync.Mutex
	pending []func()

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.Committed = true
	m.mu.Unlock()
	for _, apply := range pending {
		apply()
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.mu.Lock()
	m.pending = nil
	m.RolledBack = true
	m.mu.Unlock()
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

func onCommit(tx usecase.Transaction, apply func()) {
	mt, ok := tx.(*MockTransaction)
	if !ok {
		apply()
		return
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.pending = append(mt.pending, apply)
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockNotifier records notified events.
type MockNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(_ context.Context, event domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns the recorded events.
func (m *MockNotifier) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Event(nil), m.events...)
}

// MockObserver records unit of work outcomes.
type MockObserver struct {
	mu       sync.Mutex
	Outcomes map[string][]string
}

func NewMockObserver() *MockObserver {
	return &MockObserver{Outcomes: make(map[string][]string)}
}

func (m *MockObserver) ObserveUnitOfWork(operation, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[operation] = append(m.Outcomes[operation], outcome)
}

// MockIdempotencyStore is an in-memory IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]usecase.IdempotentResponse

	ReserveFunc  func(ctx context.Context, key, fingerprint string, ttl time.Duration) (*usecase.IdempotentResponse, bool, error)
	CompleteFunc func(ctx context.Context, key string, resp usecase.IdempotentResponse, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string]usecase.IdempotentResponse),
	}
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*usecase.IdempotentResponse, bool, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, key, fingerprint, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return &existing, false, nil
	}
	m.data[key] = usecase.IdempotentResponse{Fingerprint: fingerprint, Pending: true}
	return nil, true, nil
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key string, resp usecase.IdempotentResponse, ttl time.Duration) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, key, resp, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = resp
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Get returns the stored record for key.
func (m *MockIdempotencyStore) Get(key string) (usecase.IdempotentResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[key]
	return r, ok
}
