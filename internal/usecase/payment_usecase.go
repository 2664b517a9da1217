package usecase

import (
	"context"
	"time"

	"github.com/iho/tradeledger/internal/domain"
)

// PaymentUseCase handles intake and settlement of external payments.
type PaymentUseCase struct {
	uow         *UnitOfWork
	paymentRepo PaymentRepository
	memberRepo  MemberRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	notifier    Notifier
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	uow *UnitOfWork,
	paymentRepo PaymentRepository,
	memberRepo MemberRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	notifier Notifier,
) *PaymentUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &PaymentUseCase{
		uow:         uow,
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		notifier:    notifier,
	}
}

// CreatePaymentInput represents input for registering an incoming payment.
type CreatePaymentInput struct {
	UserID string
	Amount domain.Money
}

// AcceptPaymentResult is the settled payment and the user's balance after it.
type AcceptPaymentResult struct {
	Payment *domain.Payment
	Balance domain.Money
}

// CreatePayment registers an incoming payment for a user. The payment is not
// credited until it is accepted.
func (uc *PaymentUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Payment, error) {
	payment, err := domain.NewPayment(uc.idGen.Generate(), input.UserID, input.Amount, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	member, err := uc.memberRepo.WithID(ctx, input.UserID)
	if err != nil {
		return nil, &InfrastructureError{Op: OpCreatePayment, Err: err}
	}

	if member == nil {
		return nil, domain.ErrMemberNotFound
	}

	if member.Type != domain.AccountTypeUser {
		return nil, domain.ErrInvalidAccountType
	}

	if member.Currency != input.Amount.Currency() {
		return nil, domain.ErrCurrencyMismatch
	}

	err = uc.uow.Do(ctx, OpCreatePayment, func(ctx context.Context, tx Transaction) error {
		return uc.paymentRepo.Add(ctx, tx, payment)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, domain.Event{
		ID:            uc.idGen.Generate(),
		AggregateID:   payment.ID(),
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentCreated,
		Payload:       domain.MoneyPayload(payment.UserID(), payment.Amount()),
		OccurredAt:    payment.CreatedAt(),
	})

	return payment, nil
}

// AcceptPayment credits the payment to its user. The payment row and the
// member row stay locked until commit, so concurrent accepts of the same
// payment, or of payments of the same user, run one after another.
func (uc *PaymentUseCase) AcceptPayment(ctx context.Context, paymentID string) (*AcceptPaymentResult, error) {
	if paymentID == "" {
		return nil, domain.ErrMissingID
	}

	var result *AcceptPaymentResult

	err := uc.uow.Do(ctx, OpAcceptPayment, func(ctx context.Context, tx Transaction) error {
		payment, err := uc.paymentRepo.WithIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		if payment == nil {
			return domain.ErrPaymentNotFound
		}

		member, err := uc.memberRepo.WithBalanceAndIDForUpdate(ctx, tx, payment.UserID())
		if err != nil {
			return err
		}

		if member == nil {
			return domain.ErrMemberNotFound
		}

		if member.Currency != payment.Amount().Currency() {
			return domain.ErrCurrencyMismatch
		}

		balance, err := member.Balance()
		if err != nil {
			return err
		}

		if err := payment.Accept(uc.idGen.Generate()); err != nil {
			return err
		}

		newBalance, err := balance.Add(payment.Amount())
		if err != nil {
			return err
		}

		if err := uc.paymentRepo.Save(ctx, tx, payment); err != nil {
			return err
		}

		result = &AcceptPaymentResult{Payment: payment, Balance: newBalance}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, domain.Event{
		ID:            uc.idGen.Generate(),
		AggregateID:   result.Payment.ID(),
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentAccepted,
		Payload:       domain.PaymentAcceptedPayload(result.Payment),
		OccurredAt:    time.Now().UTC(),
	})

	return result, nil
}

// BlockPayment prevents a payment from ever being accepted.
func (uc *PaymentUseCase) BlockPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, domain.ErrMissingID
	}

	var blocked *domain.Payment

	err := uc.uow.Do(ctx, OpBlockPayment, func(ctx context.Context, tx Transaction) error {
		payment, err := uc.paymentRepo.WithIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		if payment == nil {
			return domain.ErrPaymentNotFound
		}

		payment.Block()

		if err := uc.paymentRepo.Save(ctx, tx, payment); err != nil {
			return err
		}

		blocked = payment

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, domain.Event{
		ID:            uc.idGen.Generate(),
		AggregateID:   blocked.ID(),
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentBlocked,
		Payload:       domain.MoneyPayload(blocked.UserID(), blocked.Amount()),
		OccurredAt:    time.Now().UTC(),
	})

	return blocked, nil
}

// GetPayment retrieves a payment by ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := uc.paymentRepo.WithID(ctx, id)
	if err != nil {
		return nil, &InfrastructureError{Op: "get_payment", Err: err}
	}

	if payment == nil {
		return nil, domain.ErrPaymentNotFound
	}

	return payment, nil
}

// ListPaymentsByUser lists the payments of a user, newest first.
func (uc *PaymentUseCase) ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error) {
	limit, offset = clampPage(limit, offset)

	payments, err := uc.paymentRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, &InfrastructureError{Op: "list_payments", Err: err}
	}

	return payments, nil
}

// GetPaymentEntries lists the entries a payment produced.
func (uc *PaymentUseCase) GetPaymentEntries(ctx context.Context, paymentID string) ([]domain.Entry, error) {
	if _, err := uc.GetPayment(ctx, paymentID); err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListBySource(ctx, paymentID)
	if err != nil {
		return nil, &InfrastructureError{Op: "list_payment_entries", Err: err}
	}

	return entries, nil
}
