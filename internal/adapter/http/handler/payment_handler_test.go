package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/tradeledger/internal/adapter/http/dto"
	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

type paymentServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreatePaymentInput) (*domain.Payment, error)
	acceptFn  func(ctx context.Context, paymentID string) (*usecase.AcceptPaymentResult, error)
	blockFn   func(ctx context.Context, paymentID string) (*domain.Payment, error)
	getFn     func(ctx context.Context, id string) (*domain.Payment, error)
	listFn    func(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error)
	entriesFn func(ctx context.Context, paymentID string) ([]domain.Entry, error)
}

func (s *paymentServiceStub) CreatePayment(ctx context.Context, input usecase.CreatePaymentInput) (*domain.Payment, error) {
	return s.createFn(ctx, input)
}

func (s *paymentServiceStub) AcceptPayment(ctx context.Context, paymentID string) (*usecase.AcceptPaymentResult, error) {
	return s.acceptFn(ctx, paymentID)
}

func (s *paymentServiceStub) BlockPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.blockFn(ctx, paymentID)
}

func (s *paymentServiceStub) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return s.getFn(ctx, id)
}

func (s *paymentServiceStub) ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error) {
	return s.listFn(ctx, userID, limit, offset)
}

func (s *paymentServiceStub) GetPaymentEntries(ctx context.Context, paymentID string) ([]domain.Entry, error) {
	return s.entriesFn(ctx, paymentID)
}

func alicePayment(processed bool) *domain.Payment {
	return domain.RestorePayment("pay-1", aliceID, domain.NewMoney(10000, rub), time.Now().UTC(), processed, false)
}

func TestPaymentHandler_Create_Success(t *testing.T) {
	var captured usecase.CreatePaymentInput
	h := NewPaymentHandler(&paymentServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePaymentInput) (*domain.Payment, error) {
			captured = input
			return domain.NewPayment("pay-1", input.UserID, input.Amount, time.Now().UTC())
		},
	})

	body := `{"user_id":"` + aliceID + `","amount":"100","currency":"RUB"}`
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/api/v1/payments", body, &operator, ""))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !captured.Amount.Equal(domain.NewMoney(10000, rub)) || captured.UserID != aliceID {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "pay-1" || resp.IsProcessed || resp.Amount.String() != "100" {
		t.Fatalf("unexpected payment response %+v", resp)
	}
}

func TestPaymentHandler_Accept(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"accepted", nil, http.StatusOK},
		{"already processed", domain.ErrPaymentAlreadyProcessed, http.StatusConflict},
		{"blocked", domain.ErrPaymentBlocked, http.StatusConflict},
		{"missing payment", domain.ErrPaymentNotFound, http.StatusNotFound},
		{"missing member", domain.ErrMemberNotFound, http.StatusNotFound},
		{"currency mismatch", domain.ErrCurrencyMismatch, http.StatusConflict},
		{"storage down", &usecase.InfrastructureError{Op: usecase.OpAcceptPayment, Err: context.DeadlineExceeded}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			h := NewPaymentHandler(&paymentServiceStub{
				acceptFn: func(ctx context.Context, paymentID string) (*usecase.AcceptPaymentResult, error) {
					gotID = paymentID
					if tt.err != nil {
						return nil, tt.err
					}
					return &usecase.AcceptPaymentResult{
						Payment: alicePayment(true),
						Balance: domain.NewMoney(10000, rub),
					}, nil
				},
			})

			rec := httptest.NewRecorder()
			h.Accept(rec, newRequest(http.MethodPost, "/api/v1/payments/pay-1/accept", "", &operator, "pay-1"))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if gotID != "pay-1" {
				t.Fatalf("expected payment id from URL, got %q", gotID)
			}
			if tt.err != nil {
				return
			}

			var resp dto.AcceptPaymentResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !resp.Payment.IsProcessed || resp.Balance.Balance.String() != "100" || resp.Balance.UserID != aliceID {
				t.Fatalf("unexpected accept response %+v %+v", resp.Payment, resp.Balance)
			}
		})
	}
}

func TestPaymentHandler_Block(t *testing.T) {
	h := NewPaymentHandler(&paymentServiceStub{
		blockFn: func(ctx context.Context, paymentID string) (*domain.Payment, error) {
			p := alicePayment(false)
			p.Block()
			return p, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Block(rec, newRequest(http.MethodPost, "/api/v1/payments/pay-1/block", "", &operator, "pay-1"))

	var resp dto.PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || !resp.IsBlocked {
		t.Fatalf("expected blocked payment, got %d %+v", rec.Code, resp)
	}
}

func TestPaymentHandler_GetHidesOtherMembersPayments(t *testing.T) {
	h := NewPaymentHandler(&paymentServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Payment, error) {
			return alicePayment(false), nil
		},
	})

	bob := domain.Identity{UserID: bobID, Role: domain.RoleMember}

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(http.MethodGet, "/api/v1/payments/pay-1", "", &bob, "pay-1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another member's payment, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, newRequest(http.MethodGet, "/api/v1/payments/pay-1", "", &alice, "pay-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected owner to read payment, got %d", rec.Code)
	}
}

func TestPaymentHandler_Entries(t *testing.T) {
	payment := alicePayment(false)
	if err := payment.Accept("ent-1"); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	h := NewPaymentHandler(&paymentServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Payment, error) { return payment, nil },
		entriesFn: func(ctx context.Context, paymentID string) ([]domain.Entry, error) {
			return payment.Entries(), nil
		},
	})

	rec := httptest.NewRecorder()
	h.Entries(rec, newRequest(http.MethodGet, "/api/v1/payments/pay-1/entries", "", &alice, "pay-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].SourceID != "pay-1" || resp[0].Operation != string(domain.OperationPayment) {
		t.Fatalf("unexpected entries %+v", resp)
	}
}

func TestPaymentHandler_ListByMember(t *testing.T) {
	var gotUser string
	h := NewPaymentHandler(&paymentServiceStub{
		listFn: func(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error) {
			gotUser = userID
			return []*domain.Payment{alicePayment(true)}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.ListByMember(rec, newRequest(http.MethodGet, "/api/v1/members/"+aliceID+"/payments", "", &alice, aliceID))

	if rec.Code != http.StatusOK || gotUser != aliceID {
		t.Fatalf("expected listing for %s, got %d (%s)", aliceID, rec.Code, gotUser)
	}
}
