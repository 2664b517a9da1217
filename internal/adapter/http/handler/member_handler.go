package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tradeledger/internal/adapter/http/dto"
	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

// MemberService defines the behavior needed by MemberHandler.
type MemberService interface {
	RegisterMember(ctx context.Context, input usecase.RegisterMemberInput) (*domain.Member, error)
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	ListMembers(ctx context.Context, limit, offset int) ([]*domain.Member, error)
	GetBalance(ctx context.Context, id string, locking bool) (domain.Money, error)
	BlockMember(ctx context.Context, id string) (*domain.Member, error)
	UnblockMember(ctx context.Context, id string) (*domain.Member, error)
	SetPayoutCard(ctx context.Context, id, first6, last4 string) (*domain.Member, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.WithdrawResult, error)
}

// MemberHandler handles member-related HTTP requests.
type MemberHandler struct {
	memberUC MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberUC MemberService) *MemberHandler {
	return &MemberHandler{memberUC: memberUC}
}

// Create registers a new member.
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterMemberRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	member, err := h.memberUC.RegisterMember(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to register member", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MemberFromDomain(member))
}

// Get retrieves a member with its balance.
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		writeDomainError(w, "access denied", err)
		return
	}

	member, err := h.memberUC.GetMember(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get member", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// List lists members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.DefaultPageLimit)
	offset := parseIntQuery(r, "offset", 0)

	members, err := h.memberUC.ListMembers(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list members", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMembersResponse{
		Members: dto.MembersFromDomain(members),
		Total:   int64(len(members)),
	})
}

// Balance returns the current balance. With lock=true the read waits for
// commands in flight against the member.
func (h *MemberHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		writeDomainError(w, "access denied", err)
		return
	}

	locking := r.URL.Query().Get("lock") == "true"

	balance, err := h.memberUC.GetBalance(r.Context(), id, locking)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	resp := dto.BalanceFromDomain(id, balance)
	resp.Locked = locking
	writeJSON(w, http.StatusOK, resp)
}

// Block freezes a member's ledger.
func (h *MemberHandler) Block(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberUC.BlockMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to block member", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// Unblock unfreezes a member's ledger.
func (h *MemberHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberUC.UnblockMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to unblock member", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// SetPayoutCard stores the masked payout card.
func (h *MemberHandler) SetPayoutCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		writeDomainError(w, "access denied", err)
		return
	}

	var req dto.SetPayoutCardRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	member, err := h.memberUC.SetPayoutCard(r.Context(), id, req.First6, req.Last4)
	if err != nil {
		writeDomainError(w, "failed to set payout card", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// Withdraw debits a payout from the member's ledger.
func (h *MemberHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		writeDomainError(w, "access denied", err)
		return
	}

	var req dto.WithdrawRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	result, err := h.memberUC.Withdraw(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to withdraw", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.WithdrawFromResult(result))
}
