package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/iho/tradeledger/internal/domain"
)

// TransferUseCase settles trades between two members.
type TransferUseCase struct {
	uow        *UnitOfWork
	memberRepo MemberRepository
	idGen      IDGenerator
	notifier   Notifier
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	uow *UnitOfWork,
	memberRepo MemberRepository,
	idGen IDGenerator,
	notifier Notifier,
) *TransferUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &TransferUseCase{
		uow:        uow,
		memberRepo: memberRepo,
		idGen:      idGen,
		notifier:   notifier,
	}
}

// TransferInput represents input for a member-to-member transfer.
type TransferInput struct {
	FromUserID string
	ToUserID   string
	Amount     domain.Money
}

// TransferResult is the outcome of a settled transfer.
type TransferResult struct {
	TransferID  string
	Debit       domain.Entry
	Credit      domain.Entry
	FromBalance domain.Money
	ToBalance   domain.Money
	CreatedAt   time.Time
}

// Transfer moves funds from one member to another.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	// Validate before starting transaction
	if input.FromUserID == input.ToUserID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateOperationAmount(input.Amount); err != nil {
		return nil, err
	}

	// Lock in sorted order (deadlock prevention)
	ids := []string{input.FromUserID, input.ToUserID}
	sort.Strings(ids)

	var result *TransferResult

	err := uc.uow.Do(ctx, OpTransfer, func(ctx context.Context, tx Transaction) error {
		members, err := uc.memberRepo.WithBalancesAndIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}

		byID := make(map[string]*domain.Member, len(members))
		for _, m := range members {
			byID[m.UserID] = m
		}

		from, to := byID[input.FromUserID], byID[input.ToUserID]
		if from == nil || to == nil {
			return domain.ErrMemberNotFound
		}

		now := time.Now().UTC()
		transferID := uc.idGen.Generate()

		err = from.TransferTo(to, transferID, uc.idGen.Generate(), uc.idGen.Generate(), input.Amount, now)
		if err != nil {
			return err
		}

		debit, credit := from.Entries(), to.Entries()
		fromBalance, err := from.Balance()
		if err != nil {
			return err
		}

		toBalance, err := to.Balance()
		if err != nil {
			return err
		}

		// Save in lock order as well
		for _, id := range ids {
			if err := uc.memberRepo.Save(ctx, tx, byID[id]); err != nil {
				return err
			}
		}

		result = &TransferResult{
			TransferID:  transferID,
			Debit:       debit[len(debit)-1],
			Credit:      credit[len(credit)-1],
			FromBalance: fromBalance,
			ToBalance:   toBalance,
			CreatedAt:   now,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := domain.MoneyPayload(input.FromUserID, input.Amount)
	payload["to_user_id"] = input.ToUserID

	uc.notifier.Notify(ctx, domain.Event{
		ID:            uc.idGen.Generate(),
		AggregateID:   result.TransferID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCompleted,
		Payload:       payload,
		OccurredAt:    result.CreatedAt,
	})

	return result, nil
}
