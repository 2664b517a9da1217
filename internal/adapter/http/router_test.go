package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/tradeledger/internal/adapter/http/dto"
	"github.com/iho/tradeledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/tradeledger/internal/adapter/http/middleware"
	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/infrastructure/auth"
	"github.com/iho/tradeledger/internal/infrastructure/metrics"
	"github.com/iho/tradeledger/internal/usecase"
	"github.com/iho/tradeledger/internal/usecase/mocks"
)

const (
	buyerID  = "0a8f3a2e-1d2b-4f7e-8a43-7a2f1c4b9e01"
	sellerID = "f3b1d8c2-5e6a-4c1d-9b7f-2e8a6d4c1f02"
)

// stack is the router wired to real use cases over in-memory repositories.
type stack struct {
	router   http.Handler
	tokens   *auth.JWTManager
	store    *mocks.MockIdempotencyStore
	metrics  *metrics.Metrics
	notifier *mocks.MockNotifier
	ledger   *mocks.MockLedgerRepository
}

func newStack(t *testing.T, opts ...func(*RouterConfig)) *stack {
	t.Helper()

	entries := mocks.NewMockEntryRepository()
	members := mocks.NewMockMemberRepository(entries)
	payments := mocks.NewMockPaymentRepository(entries)
	idGen := mocks.NewMockIDGenerator()

	s := &stack{
		tokens:   auth.NewJWTManager("test-secret", time.Hour),
		store:    mocks.NewMockIdempotencyStore(),
		notifier: mocks.NewMockNotifier(),
		ledger:   &mocks.MockLedgerRepository{},
	}

	reg := prometheus.NewRegistry()
	s.metrics = metrics.New(reg)

	uow := usecase.NewUnitOfWork(mocks.NewMockTransactionManager(), usecase.WithObserver(s.metrics))

	cfg := RouterConfig{
		MemberHandler:    handler.NewMemberHandler(usecase.NewMemberUseCase(uow, members, idGen, s.notifier, "RUB")),
		PaymentHandler:   handler.NewPaymentHandler(usecase.NewPaymentUseCase(uow, payments, members, entries, idGen, s.notifier)),
		TransferHandler:  handler.NewTransferHandler(usecase.NewTransferUseCase(uow, members, idGen, s.notifier)),
		EntryHandler:     handler.NewEntryHandler(usecase.NewEntryUseCase(entries, members)),
		LedgerHandler:    handler.NewLedgerHandler(usecase.NewLedgerUseCase(s.ledger)),
		HealthHandler:    handler.NewHealthHandlerWithChecks(),
		TokenVerifier:    s.tokens,
		IdempotencyStore: s.store,
		IdempotencyTTL:   time.Hour,
		Metrics:          s.metrics,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	s.router = NewRouter(cfg)
	return s
}

func (s *stack) token(t *testing.T, identity domain.Identity) string {
	t.Helper()

	token, err := s.tokens.Generate(identity)
	require.NoError(t, err)
	return token
}

func (s *stack) do(t *testing.T, identity *domain.Identity, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, *identity))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

var (
	adminID    = domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin}
	operatorID = domain.Identity{UserID: "operator-1", Role: domain.RoleOperator}
	buyer      = domain.Identity{UserID: buyerID, Role: domain.RoleMember}
	seller     = domain.Identity{UserID: sellerID, Role: domain.RoleMember}
)

func (s *stack) register(t *testing.T, id, typ string) {
	t.Helper()

	rec := s.do(t, &adminID, http.MethodPost, "/api/v1/members", `{"user_id":"`+id+`","type":"`+typ+`","synonym":"m"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *stack) createPayment(t *testing.T, userID, amount string) string {
	t.Helper()

	rec := s.do(t, &operatorID, http.MethodPost, "/api/v1/payments", `{"user_id":"`+userID+`","amount":"`+amount+`","currency":"RUB"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func (s *stack) balance(t *testing.T, identity domain.Identity, id string) string {
	t.Helper()

	rec := s.do(t, &identity, http.MethodGet, "/api/v1/members/"+id+"/balance?lock=true", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Balance.String()
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	s := newStack(t)

	rec := s.do(t, nil, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_AcceptPaymentCreditsBalance(t *testing.T) {
	s := newStack(t)
	s.register(t, buyerID, "user")

	paymentID := s.createPayment(t, buyerID, "100")
	assert.Equal(t, "0", s.balance(t, buyer, buyerID))

	rec := s.do(t, &operatorID, http.MethodPost, "/api/v1/payments/"+paymentID+"/accept", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var accepted dto.AcceptPaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.True(t, accepted.Payment.IsProcessed)
	assert.Equal(t, "100", accepted.Balance.Balance.String())

	assert.Equal(t, "100", s.balance(t, buyer, buyerID))

	// A second accept is rejected and credits nothing.
	rec = s.do(t, &operatorID, http.MethodPost, "/api/v1/payments/"+paymentID+"/accept", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "100", s.balance(t, buyer, buyerID))

	rec = s.do(t, &buyer, http.MethodGet, "/api/v1/payments/"+paymentID+"/entries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []dto.EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestNewRouter_BlockedPaymentCannotBeAccepted(t *testing.T) {
	s := newStack(t)
	s.register(t, buyerID, "user")
	paymentID := s.createPayment(t, buyerID, "50")

	rec := s.do(t, &operatorID, http.MethodPost, "/api/v1/payments/"+paymentID+"/block", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, &operatorID, http.MethodPost, "/api/v1/payments/"+paymentID+"/accept", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "0", s.balance(t, buyer, buyerID))
}

func TestNewRouter_AcceptUnknownPaymentIsNotFound(t *testing.T) {
	s := newStack(t)

	rec := s.do(t, &operatorID, http.MethodPost, "/api/v1/payments/missing/accept", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_TransferAndWithdraw(t *testing.T) {
	s := newStack(t)
	s.register(t, buyerID, "user")
	s.register(t, sellerID, "seller")

	paymentID := s.createPayment(t, buyerID, "100")
	require.Equal(t, http.StatusOK, s.do(t, &operatorID, http.MethodPost, "/api/v1/payments/"+paymentID+"/accept", "").Code)

	rec := s.do(t, &buyer, http.MethodPost, "/api/v1/transfers",
		`{"from_user_id":"`+buyerID+`","to_user_id":"`+sellerID+`","amount":"40","currency":"RUB"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "60", s.balance(t, buyer, buyerID))
	assert.Equal(t, "40", s.balance(t, seller, sellerID))

	rec = s.do(t, &seller, http.MethodPost, "/api/v1/members/"+sellerID+"/withdrawals", `{"amount":"50","currency":"RUB"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "withdrawal above balance must be rejected")

	rec = s.do(t, &seller, http.MethodPost, "/api/v1/members/"+sellerID+"/withdrawals", `{"amount":"15","currency":"RUB"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "25", s.balance(t, seller, sellerID))
}

func TestNewRouter_Authorization(t *testing.T) {
	s := newStack(t)
	s.register(t, buyerID, "user")

	tests := []struct {
		name       string
		identity   *domain.Identity
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"no token", nil, http.MethodGet, "/api/v1/members/" + buyerID, "", http.StatusUnauthorized},
		{"member reads own", &buyer, http.MethodGet, "/api/v1/members/" + buyerID, "", http.StatusOK},
		{"member reads other", &seller, http.MethodGet, "/api/v1/members/" + buyerID, "", http.StatusForbidden},
		{"member lists members", &buyer, http.MethodGet, "/api/v1/members", "", http.StatusForbidden},
		{"operator lists members", &operatorID, http.MethodGet, "/api/v1/members", "", http.StatusOK},
		{"operator registers member", &operatorID, http.MethodPost, "/api/v1/members", `{"user_id":"` + sellerID + `","type":"seller","synonym":"s"}`, http.StatusForbidden},
		{"member accepts payment", &buyer, http.MethodPost, "/api/v1/payments/p/accept", "", http.StatusForbidden},
		{"member checks ledger", &buyer, http.MethodGet, "/api/v1/ledger/consistency", "", http.StatusForbidden},
		{"operator checks ledger", &operatorID, http.MethodGet, "/api/v1/ledger/consistency", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.identity, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestNewRouter_WithoutVerifierRunsAsSystem(t *testing.T) {
	s := newStack(t, func(cfg *RouterConfig) { cfg.TokenVerifier = nil })

	rec := s.do(t, nil, http.MethodPost, "/api/v1/members", `{"user_id":"`+buyerID+`","type":"user","synonym":"b"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestNewRouter_IdempotentAcceptReplays(t *testing.T) {
	s := newStack(t)
	s.register(t, buyerID, "user")
	paymentID := s.createPayment(t, buyerID, "100")

	path := "/api/v1/payments/" + paymentID + "/accept"
	first := s.do(t, &operatorID, http.MethodPost, path, "", apimiddleware.IdempotencyKeyHeader, "accept-1")
	second := s.do(t, &operatorID, http.MethodPost, path, "", apimiddleware.IdempotencyKeyHeader, "accept-1")

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(apimiddleware.IdempotencyReplayHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	_, ok := s.store.Get(operatorID.UserID + ":accept-1")
	assert.True(t, ok, "expected key scoped by caller")
	assert.Equal(t, "100", s.balance(t, buyer, buyerID))
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	s := newStack(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	})

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	s.router.ServeHTTP(rec1, req1)
	require.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	s.router.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestNewRouter_MetricsEndpointExposesUnitOfWork(t *testing.T) {
	s := newStack(t)
	s.register(t, buyerID, "user")

	rec := s.do(t, nil, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `tradeledger_unit_of_work_total{operation="register_member",outcome="committed"} 1`)
	assert.Contains(t, body, `tradeledger_http_requests_total{method="POST",route="/api/v1/members`)
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	s := newStack(t)

	chiRoutes, ok := s.router.(chi.Routes)
	require.True(t, ok, "router does not implement chi.Routes")

	seen := map[string]bool{}
	require.NoError(t, chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}))

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/members/",
		"GET /api/v1/members/",
		"GET /api/v1/members/{id}",
		"GET /api/v1/members/{id}/balance",
		"GET /api/v1/members/{id}/balance/history",
		"GET /api/v1/members/{id}/entries",
		"GET /api/v1/members/{id}/payments",
		"POST /api/v1/members/{id}/block",
		"POST /api/v1/members/{id}/unblock",
		"PUT /api/v1/members/{id}/card",
		"POST /api/v1/members/{id}/withdrawals",
		"POST /api/v1/payments/",
		"GET /api/v1/payments/{id}",
		"POST /api/v1/payments/{id}/accept",
		"POST /api/v1/payments/{id}/block",
		"GET /api/v1/payments/{id}/entries",
		"POST /api/v1/transfers",
		"GET /api/v1/ledger/consistency",
	}

	for _, route := range expected {
		assert.True(t, seen[route], "expected route %s to be registered", route)
	}
}
