package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/infrastructure/postgres/generated"
	"github.com/iho/tradeledger/internal/usecase"
)

// MemberRepository implements usecase.MemberRepository.
type MemberRepository struct {
	queries *generated.Queries
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return newMemberRepository(pool)
}

func newMemberRepository(db generated.DBTX) *MemberRepository {
	return &MemberRepository{queries: generated.New(db)}
}

// Add inserts a new member. A duplicate user id maps to domain.ErrMemberExists.
func (r *MemberRepository) Add(ctx context.Context, tx usecase.Transaction, member *domain.Member) error {
	q := txQueries(tx)

	err := q.CreateMember(ctx, generated.CreateMemberParams{
		UserID:      member.UserID,
		AccountType: string(member.Type),
		Synonym:     member.Synonym,
		First6:      member.First6,
		Last4:       member.Last4,
		IsBlocked:   member.Blocked,
		Currency:    string(member.Currency),
		CreatedAt:   timeToPgTimestamptz(member.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(member.UpdatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMemberExists
		}

		return err
	}

	return insertEntries(ctx, q, member.PullEntries())
}

// WithID loads a member without its balance.
func (r *MemberRepository) WithID(ctx context.Context, id string) (*domain.Member, error) {
	row, err := r.queries.GetMemberByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rowToMember(row), nil
}

// WithBalanceAndID loads a member and the sum of its accepted entries.
func (r *MemberRepository) WithBalanceAndID(ctx context.Context, id string) (*domain.Member, error) {
	row, err := r.queries.GetMemberWithBalance(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return withBalance(generated.Member{
		UserID:      row.UserID,
		AccountType: row.AccountType,
		Synonym:     row.Synonym,
		First6:      row.First6,
		Last4:       row.Last4,
		IsBlocked:   row.IsBlocked,
		Currency:    row.Currency,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, row.Balance), nil
}

// WithBalanceAndIDForUpdate locks the member row with FOR UPDATE, then sums
// its accepted entries in a second statement. Under READ COMMITTED the sum
// gets a fresh snapshot taken after the lock is granted, so it includes
// entries committed by the previous lock holder.
func (r *MemberRepository) WithBalanceAndIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error) {
	q := txQueries(tx)

	row, err := q.LockMember(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	balance, err := q.GetAccountBalance(ctx, id)
	if err != nil {
		return nil, err
	}

	return withBalance(row, balance), nil
}

// WithBalancesAndIDsForUpdate locks the given members in ascending id order,
// then sums their accepted entries. Missing ids are absent from the result.
func (r *MemberRepository) WithBalancesAndIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Member, error) {
	q := txQueries(tx)

	rows, err := q.LockMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*domain.Member{}, nil
	}

	locked := make([]string, 0, len(rows))
	for _, row := range rows {
		locked = append(locked, row.UserID)
	}

	sums, err := q.GetAccountBalances(ctx, locked)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]int64, len(sums))
	for _, sum := range sums {
		balances[sum.AccountID] = sum.Balance
	}

	members := make([]*domain.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, withBalance(row, balances[row.UserID]))
	}

	return members, nil
}

// Save writes member flags and the entries recorded since the member was loaded.
func (r *MemberRepository) Save(ctx context.Context, tx usecase.Transaction, member *domain.Member) error {
	q := txQueries(tx)

	err := q.UpdateMember(ctx, generated.UpdateMemberParams{
		UserID:    member.UserID,
		Synonym:   member.Synonym,
		First6:    member.First6,
		Last4:     member.Last4,
		IsBlocked: member.Blocked,
		UpdatedAt: timeToPgTimestamptz(member.UpdatedAt),
	})
	if err != nil {
		return err
	}

	return insertEntries(ctx, q, member.PullEntries())
}

// List lists members with pagination.
func (r *MemberRepository) List(ctx context.Context, limit, offset int) ([]*domain.Member, error) {
	rows, err := r.queries.ListMembers(ctx, generated.ListMembersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	members := make([]*domain.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, rowToMember(row))
	}

	return members, nil
}

func rowToMember(row generated.Member) *domain.Member {
	return &domain.Member{
		UserID:    row.UserID,
		Type:      domain.AccountType(row.AccountType),
		Synonym:   row.Synonym,
		First6:    row.First6,
		Last4:     row.Last4,
		Blocked:   row.IsBlocked,
		Currency:  domain.Currency(row.Currency),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func withBalance(row generated.Member, balance int64) *domain.Member {
	m := rowToMember(row)
	m.RestoreBalance(domain.NewMoney(balance, m.Currency))

	return m
}
