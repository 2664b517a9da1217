package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tradeledger/internal/adapter/http/dto"
	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	ListByAccount(ctx context.Context, input usecase.ListEntriesInput) ([]domain.Entry, error)
	BalanceAt(ctx context.Context, accountID string, at time.Time) (domain.Money, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// ListByAccount lists entries for a member.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if err := authorize(r, accountID); err != nil {
		writeDomainError(w, "access denied", err)
		return
	}

	entries, err := h.entryUC.ListByAccount(r.Context(), usecase.ListEntriesInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", usecase.DefaultPageLimit),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// BalanceHistory returns the balance as of the at query parameter (RFC 3339).
// Payment credits are dated at payment creation, so a payment accepted later
// is already included at instants between its creation and its acceptance.
func (h *EntryHandler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if err := authorize(r, accountID); err != nil {
		writeDomainError(w, "access denied", err)
		return
	}

	atParam := r.URL.Query().Get("at")
	if atParam == "" {
		writeError(w, http.StatusBadRequest, "missing 'at' query parameter", "")
		return
	}

	at, err := time.Parse(time.RFC3339, atParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'at' query parameter", "expected RFC 3339 time")
		return
	}

	balance, err := h.entryUC.BalanceAt(r.Context(), accountID, at)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	resp := dto.BalanceFromDomain(accountID, balance)
	resp.At = &at
	writeJSON(w, http.StatusOK, resp)
}
