package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

// MoneyRequest is an amount in major units with its currency code.
type MoneyRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required,currency"`
}

// Money converts the request amount to minor units.
func (r MoneyRequest) Money() (domain.Money, error) {
	currency, err := domain.ParseCurrency(r.Currency)
	if err != nil {
		return domain.Money{}, err
	}

	return domain.MoneyFromDecimal(r.Amount, currency)
}

// RegisterMemberRequest represents a request to open a ledger for a user.
type RegisterMemberRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	Type    string `json:"type" validate:"required,oneof=user seller"`
	Synonym string `json:"synonym" validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterMemberRequest) ToUseCaseInput() usecase.RegisterMemberInput {
	return usecase.RegisterMemberInput{
		UserID:  r.UserID,
		Type:    domain.AccountType(r.Type),
		Synonym: r.Synonym,
	}
}

// SetPayoutCardRequest carries the visible fragments of a payout card.
type SetPayoutCardRequest struct {
	First6 string `json:"first6" validate:"required,len=6,numeric"`
	Last4  string `json:"last4" validate:"required,len=4,numeric"`
}

// WithdrawRequest represents a payout from a member's ledger.
type WithdrawRequest struct {
	MoneyRequest
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput(userID string) (usecase.WithdrawInput, error) {
	amount, err := r.Money()
	if err != nil {
		return usecase.WithdrawInput{}, err
	}

	return usecase.WithdrawInput{UserID: userID, Amount: amount}, nil
}

// CreatePaymentRequest registers an incoming payment for a user.
type CreatePaymentRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	MoneyRequest
}

// ToUseCaseInput converts to use case input.
func (r *CreatePaymentRequest) ToUseCaseInput() (usecase.CreatePaymentInput, error) {
	amount, err := r.Money()
	if err != nil {
		return usecase.CreatePaymentInput{}, err
	}

	return usecase.CreatePaymentInput{UserID: r.UserID, Amount: amount}, nil
}

// CreateTransferRequest represents a request to move funds between members.
type CreateTransferRequest struct {
	FromUserID string `json:"from_user_id" validate:"required,uuid"`
	ToUserID   string `json:"to_user_id" validate:"required,uuid,nefield=FromUserID"`
	MoneyRequest
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() (usecase.TransferInput, error) {
	amount, err := r.Money()
	if err != nil {
		return usecase.TransferInput{}, err
	}

	return usecase.TransferInput{
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Amount:     amount,
	}, nil
}
