package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

// MemberResponse represents an account holder in API responses. Balance is
// present only when the member was loaded with its balance.
type MemberResponse struct {
	UserID    string           `json:"user_id"`
	Type      string           `json:"type"`
	Synonym   string           `json:"synonym"`
	First6    string           `json:"first6,omitempty"`
	Last4     string           `json:"last4,omitempty"`
	Blocked   bool             `json:"blocked"`
	Currency  string           `json:"currency"`
	Balance   *decimal.Decimal `json:"balance,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// MemberFromDomain converts a domain member to a response.
func MemberFromDomain(m *domain.Member) *MemberResponse {
	resp := &MemberResponse{
		UserID:    m.UserID,
		Type:      string(m.Type),
		Synonym:   m.Synonym,
		First6:    m.First6,
		Last4:     m.Last4,
		Blocked:   m.Blocked,
		Currency:  string(m.Currency),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if balance, err := m.Balance(); err == nil {
		d := balance.Decimal()
		resp.Balance = &d
	}

	return resp
}

// MembersFromDomain converts domain members to responses.
func MembersFromDomain(members []*domain.Member) []*MemberResponse {
	result := make([]*MemberResponse, len(members))
	for i, m := range members {
		result[i] = MemberFromDomain(m)
	}
	return result
}

// ListMembersResponse is a page of members.
type ListMembersResponse struct {
	Members []*MemberResponse `json:"members"`
	Total   int64             `json:"total"`
}

// BalanceResponse represents a member balance.
type BalanceResponse struct {
	UserID   string          `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	Locked   bool            `json:"locked,omitempty"`
	At       *time.Time      `json:"at,omitempty"`
}

// BalanceFromDomain converts a balance to a response.
func BalanceFromDomain(userID string, balance domain.Money) *BalanceResponse {
	return &BalanceResponse{
		UserID:   userID,
		Balance:  balance.Decimal(),
		Currency: string(balance.Currency()),
	}
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	IsProcessed bool            `json:"is_processed"`
	IsBlocked   bool            `json:"is_blocked"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID(),
		UserID:      p.UserID(),
		Amount:      p.Amount().Decimal(),
		Currency:    string(p.Amount().Currency()),
		IsProcessed: p.IsProcessed(),
		IsBlocked:   p.IsBlocked(),
		CreatedAt:   p.CreatedAt(),
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// AcceptPaymentResponse is a settled payment with the user's new balance.
type AcceptPaymentResponse struct {
	Payment *PaymentResponse `json:"payment"`
	Balance *BalanceResponse `json:"balance"`
}

// AcceptPaymentFromResult converts an accept result to a response.
func AcceptPaymentFromResult(res *usecase.AcceptPaymentResult) *AcceptPaymentResponse {
	return &AcceptPaymentResponse{
		Payment: PaymentFromDomain(res.Payment),
		Balance: BalanceFromDomain(res.Payment.UserID(), res.Balance),
	}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	SourceID    string          `json:"source_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	AccountType string          `json:"account_type"`
	Operation   string          `json:"operation"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID(),
		AccountID:   e.AccountID(),
		SourceID:    e.SourceID(),
		Amount:      e.Amount().Decimal(),
		Currency:    string(e.Amount().Currency()),
		AccountType: string(e.AccountType()),
		Operation:   string(e.Operation()),
		Status:      string(e.Status()),
		CreatedAt:   e.CreatedAt(),
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// WithdrawResponse is a withdrawal entry with the balance after it.
type WithdrawResponse struct {
	Entry   *EntryResponse   `json:"entry"`
	Balance *BalanceResponse `json:"balance"`
}

// WithdrawFromResult converts a withdrawal result to a response.
func WithdrawFromResult(res *usecase.WithdrawResult) *WithdrawResponse {
	return &WithdrawResponse{
		Entry:   EntryFromDomain(res.Entry),
		Balance: BalanceFromDomain(res.Entry.AccountID(), res.Balance),
	}
}

// TransferResponse represents a settled transfer.
type TransferResponse struct {
	TransferID  string           `json:"transfer_id"`
	Debit       *EntryResponse   `json:"debit"`
	Credit      *EntryResponse   `json:"credit"`
	FromBalance *BalanceResponse `json:"from_balance"`
	ToBalance   *BalanceResponse `json:"to_balance"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TransferFromResult converts a transfer result to a response.
func TransferFromResult(res *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		TransferID:  res.TransferID,
		Debit:       EntryFromDomain(res.Debit),
		Credit:      EntryFromDomain(res.Credit),
		FromBalance: BalanceFromDomain(res.Debit.AccountID(), res.FromBalance),
		ToBalance:   BalanceFromDomain(res.Credit.AccountID(), res.ToBalance),
		CreatedAt:   res.CreatedAt,
	}
}

// ConsistencyResponse is the ledger consistency report.
type ConsistencyResponse struct {
	Consistent        bool  `json:"consistent"`
	ProcessedPayments int64 `json:"processed_payments"`
	PaymentEntries    int64 `json:"payment_entries"`
	MissingEntries    int64 `json:"missing_entries"`
	OrphanEntries     int64 `json:"orphan_entries"`
	DuplicateEntries  int64 `json:"duplicate_entries"`
}

// ConsistencyFromReport converts a consistency report to a response.
func ConsistencyFromReport(r usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:        r.Consistent(),
		ProcessedPayments: r.ProcessedPayments,
		PaymentEntries:    r.PaymentEntries,
		MissingEntries:    r.MissingEntries,
		OrphanEntries:     r.OrphanEntries,
		DuplicateEntries:  r.DuplicateEntries,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
