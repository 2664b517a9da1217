package usecase

import (
	"context"
	"time"

	"github.com/iho/tradeledger/internal/domain"
)

// EntryUseCase handles entry queries.
type EntryUseCase struct {
	entryRepo  EntryRepository
	memberRepo MemberRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository, memberRepo MemberRepository) *EntryUseCase {
	return &EntryUseCase{
		entryRepo:  entryRepo,
		memberRepo: memberRepo,
	}
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListByAccount lists entries for an account, newest first.
func (uc *EntryUseCase) ListByAccount(ctx context.Context, input ListEntriesInput) ([]domain.Entry, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	entries, err := uc.entryRepo.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, &InfrastructureError{Op: "list_entries", Err: err}
	}

	return entries, nil
}

// ListBySource lists the entries produced by one payment, transfer or
// withdrawal.
func (uc *EntryUseCase) ListBySource(ctx context.Context, sourceID string) ([]domain.Entry, error) {
	entries, err := uc.entryRepo.ListBySource(ctx, sourceID)
	if err != nil {
		return nil, &InfrastructureError{Op: "list_entries_by_source", Err: err}
	}

	return entries, nil
}

// BalanceAt returns the balance of accepted entries created at or before at.
// A payment credit carries the payment's creation time, not the time it was
// accepted, so it counts at any instant after the payment was created.
func (uc *EntryUseCase) BalanceAt(ctx context.Context, accountID string, at time.Time) (domain.Money, error) {
	member, err := uc.memberRepo.WithID(ctx, accountID)
	if err != nil {
		return domain.Money{}, &InfrastructureError{Op: "balance_at", Err: err}
	}

	if member == nil {
		return domain.Money{}, domain.ErrMemberNotFound
	}

	balance, err := uc.entryRepo.BalanceAt(ctx, accountID, member.Currency, at)
	if err != nil {
		return domain.Money{}, &InfrastructureError{Op: "balance_at", Err: err}
	}

	return balance, nil
}
