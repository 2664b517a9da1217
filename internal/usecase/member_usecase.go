package usecase

import (
	"context"
	"time"

	"github.com/iho/tradeledger/internal/domain"
)

// MemberUseCase handles account holder operations.
type MemberUseCase struct {
	uow        *UnitOfWork
	memberRepo MemberRepository
	idGen      IDGenerator
	notifier   Notifier
	currency   domain.Currency
}

// NewMemberUseCase creates a new MemberUseCase. New members keep their ledger
// in currency.
func NewMemberUseCase(
	uow *UnitOfWork,
	memberRepo MemberRepository,
	idGen IDGenerator,
	notifier Notifier,
	currency domain.Currency,
) *MemberUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &MemberUseCase{
		uow:        uow,
		memberRepo: memberRepo,
		idGen:      idGen,
		notifier:   notifier,
		currency:   currency,
	}
}

// RegisterMemberInput represents input for registering an account holder.
type RegisterMemberInput struct {
	UserID  string
	Type    domain.AccountType
	Synonym string
}

// WithdrawInput represents input for a payout from a member's ledger.
type WithdrawInput struct {
	UserID string
	Amount domain.Money
}

// WithdrawResult is the withdrawal entry and the balance after it.
type WithdrawResult struct {
	Entry   domain.Entry
	Balance domain.Money
}

// RegisterMember opens a ledger for a user known to the identity service.
func (uc *MemberUseCase) RegisterMember(ctx context.Context, input RegisterMemberInput) (*domain.Member, error) {
	member, err := domain.NewMember(input.UserID, input.Type, input.Synonym, uc.currency, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = uc.uow.Do(ctx, OpRegisterMember, func(ctx context.Context, tx Transaction) error {
		return uc.memberRepo.Add(ctx, tx, member)
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, member.UserID, domain.EventTypeMemberRegistered, map[string]any{
		"user_id": member.UserID,
		"type":    string(member.Type),
	})

	return member, nil
}

// GetMember retrieves a member together with its current balance.
func (uc *MemberUseCase) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	member, err := uc.memberRepo.WithBalanceAndID(ctx, id)
	if err != nil {
		return nil, &InfrastructureError{Op: "get_member", Err: err}
	}

	if member == nil {
		return nil, domain.ErrMemberNotFound
	}

	return member, nil
}

// ListMembers lists members with pagination. Balances are not loaded.
func (uc *MemberUseCase) ListMembers(ctx context.Context, limit, offset int) ([]*domain.Member, error) {
	limit, offset = clampPage(limit, offset)

	members, err := uc.memberRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, &InfrastructureError{Op: "list_members", Err: err}
	}

	return members, nil
}

// GetBalance returns the sum of the member's accepted entries. With locking
// set the read takes the member row lock, so it observes every write that
// committed before it and none that is still in flight.
func (uc *MemberUseCase) GetBalance(ctx context.Context, id string, locking bool) (domain.Money, error) {
	if !locking {
		member, err := uc.GetMember(ctx, id)
		if err != nil {
			return domain.Money{}, err
		}

		return member.Balance()
	}

	var balance domain.Money

	err := uc.uow.Do(ctx, OpLockedBalance, func(ctx context.Context, tx Transaction) error {
		member, err := uc.lockMember(ctx, tx, id)
		if err != nil {
			return err
		}

		balance, err = member.Balance()

		return err
	})

	return balance, err
}

// BlockMember freezes a member's ledger.
func (uc *MemberUseCase) BlockMember(ctx context.Context, id string) (*domain.Member, error) {
	member, err := uc.mutate(ctx, OpBlockMember, id, func(m *domain.Member, now time.Time) error {
		m.Block(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, member.UserID, domain.EventTypeMemberBlocked, map[string]any{"user_id": member.UserID})

	return member, nil
}

// UnblockMember lifts a freeze.
func (uc *MemberUseCase) UnblockMember(ctx context.Context, id string) (*domain.Member, error) {
	member, err := uc.mutate(ctx, OpUnblockMember, id, func(m *domain.Member, now time.Time) error {
		m.Unblock(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, member.UserID, domain.EventTypeMemberUnblocked, map[string]any{"user_id": member.UserID})

	return member, nil
}

// SetPayoutCard stores the masked payout card of a member.
func (uc *MemberUseCase) SetPayoutCard(ctx context.Context, id, first6, last4 string) (*domain.Member, error) {
	return uc.mutate(ctx, OpSetPayoutCard, id, func(m *domain.Member, now time.Time) error {
		return m.SetPayoutCard(first6, last4, now)
	})
}

// Withdraw debits a payout from the member's ledger.
func (uc *MemberUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*WithdrawResult, error) {
	var result *WithdrawResult

	_, err := uc.mutate(ctx, OpWithdraw, input.UserID, func(m *domain.Member, now time.Time) error {
		if err := m.Withdraw(uc.idGen.Generate(), input.Amount, now); err != nil {
			return err
		}

		entries := m.Entries()
		balance, err := m.Balance()
		if err != nil {
			return err
		}

		result = &WithdrawResult{Entry: entries[len(entries)-1], Balance: balance}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, input.UserID, domain.EventTypeWithdrawalCreated, domain.MoneyPayload(input.UserID, input.Amount))

	return result, nil
}

// mutate loads the member under lock, applies fn and saves the result in one
// unit of work.
func (uc *MemberUseCase) mutate(
	ctx context.Context,
	op, id string,
	fn func(m *domain.Member, now time.Time) error,
) (*domain.Member, error) {
	var saved *domain.Member

	err := uc.uow.Do(ctx, op, func(ctx context.Context, tx Transaction) error {
		member, err := uc.lockMember(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := fn(member, time.Now().UTC()); err != nil {
			return err
		}

		if err := uc.memberRepo.Save(ctx, tx, member); err != nil {
			return err
		}

		saved = member

		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (uc *MemberUseCase) lockMember(ctx context.Context, tx Transaction, id string) (*domain.Member, error) {
	member, err := uc.memberRepo.WithBalanceAndIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if member == nil {
		return nil, domain.ErrMemberNotFound
	}

	return member, nil
}

func (uc *MemberUseCase) notify(ctx context.Context, userID, eventType string, payload map[string]any) {
	uc.notifier.Notify(ctx, domain.Event{
		ID:            uc.idGen.Generate(),
		AggregateID:   userID,
		AggregateType: domain.AggregateTypeMember,
		EventType:     eventType,
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	})
}
