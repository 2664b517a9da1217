package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tradeledger/internal/adapter/http/dto"
	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	CreatePayment(ctx context.Context, input usecase.CreatePaymentInput) (*domain.Payment, error)
	AcceptPayment(ctx context.Context, paymentID string) (*usecase.AcceptPaymentResult, error)
	BlockPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error)
	GetPaymentEntries(ctx context.Context, paymentID string) ([]domain.Entry, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create registers an incoming payment.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	payment, err := h.paymentUC.CreatePayment(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// Get retrieves a payment by ID.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	payment, ok := h.load(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// Accept settles a payment and credits the user.
func (h *PaymentHandler) Accept(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentUC.AcceptPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to accept payment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AcceptPaymentFromResult(result))
}

// Block marks a payment as blocked so it can never be accepted.
func (h *PaymentHandler) Block(w http.ResponseWriter, r *http.Request) {
	payment, err := h.paymentUC.BlockPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to block payment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// Entries lists the entries a payment produced.
func (h *PaymentHandler) Entries(w http.ResponseWriter, r *http.Request) {
	payment, ok := h.load(w, r)
	if !ok {
		return
	}

	entries, err := h.paymentUC.GetPaymentEntries(r.Context(), payment.ID())
	if err != nil {
		writeDomainError(w, "failed to list payment entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListByMember lists the payments of a member.
func (h *PaymentHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := authorize(r, userID); err != nil {
		writeDomainError(w, "access denied", err)
		return
	}

	limit := parseIntQuery(r, "limit", usecase.DefaultPageLimit)
	offset := parseIntQuery(r, "offset", 0)

	payments, err := h.paymentUC.ListPaymentsByUser(r.Context(), userID, limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list payments", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}

// load fetches the payment named in the URL and checks the caller owns it.
func (h *PaymentHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Payment, bool) {
	payment, err := h.paymentUC.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get payment", err)
		return nil, false
	}

	if err := authorize(r, payment.UserID()); err != nil {
		// Other members' payments look absent.
		writeDomainError(w, "failed to get payment", domain.ErrPaymentNotFound)
		return nil, false
	}

	return payment, true
}
