package domain

import "time"

// Event types
const (
	EventTypePaymentCreated    = "payment.created"
	EventTypePaymentAccepted   = "payment.accepted"
	EventTypePaymentBlocked    = "payment.blocked"
	EventTypeMemberRegistered  = "member.registered"
	EventTypeMemberBlocked     = "member.blocked"
	EventTypeMemberUnblocked   = "member.unblocked"
	EventTypeWithdrawalCreated = "withdrawal.created"
	EventTypeTransferCompleted = "transfer.completed"
)

// Aggregate types
const (
	AggregateTypePayment  = "payment"
	AggregateTypeMember   = "member"
	AggregateTypeTransfer = "transfer"
)

// Event is a notification about a committed ledger change.
type Event struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	OccurredAt    time.Time
}

// PaymentAcceptedPayload builds the payload of a payment.accepted event.
func PaymentAcceptedPayload(p *Payment) map[string]any {
	return map[string]any{
		"payment_id": p.ID(),
		"user_id":    p.UserID(),
		"amount":     p.Amount().Decimal().String(),
		"currency":   string(p.Amount().Currency()),
	}
}

// MoneyPayload builds a payload for events that move an amount for a member.
func MoneyPayload(userID string, amount Money) map[string]any {
	return map[string]any{
		"user_id":  userID,
		"amount":   amount.Decimal().String(),
		"currency": string(amount.Currency()),
	}
}
