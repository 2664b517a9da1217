package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/tradeledger/internal/adapter/http/handler"
	"github.com/iho/tradeledger/internal/adapter/http/middleware"
	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/infrastructure/metrics"
	"github.com/iho/tradeledger/internal/usecase"
)

// SystemIdentity is the caller assumed for every request when token checks
// are switched off.
var SystemIdentity = domain.Identity{UserID: "system", Role: domain.RoleAdmin}

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	MemberHandler   *handler.MemberHandler
	PaymentHandler  *handler.PaymentHandler
	TransferHandler *handler.TransferHandler
	EntryHandler    *handler.EntryHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	// TokenVerifier authenticates API calls. When nil every call runs as
	// SystemIdentity.
	TokenVerifier    middleware.TokenVerifier
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.WithMetrics(cfg.Metrics).Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.Authenticate(cfg.TokenVerifier, cfg.Metrics))
		} else {
			r.Use(middleware.StaticIdentity(SystemIdentity))
		}

		// Idempotency runs after authentication so keys are scoped per caller
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).
				WithMetrics(cfg.Metrics)
			r.Use(idempotency.Wrap)
		}

		manageMembers := middleware.RequireRole(domain.Role.CanManageMembers)
		staff := middleware.RequireRole(middleware.Staff)

		// Members
		r.Route("/members", func(r chi.Router) {
			r.With(manageMembers).Post("/", cfg.MemberHandler.Create)
			r.With(staff).Get("/", cfg.MemberHandler.List)
			r.Get("/{id}", cfg.MemberHandler.Get)
			r.Get("/{id}/balance", cfg.MemberHandler.Balance)
			r.Get("/{id}/balance/history", cfg.EntryHandler.BalanceHistory)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/payments", cfg.PaymentHandler.ListByMember)
			r.With(manageMembers).Post("/{id}/block", cfg.MemberHandler.Block)
			r.With(manageMembers).Post("/{id}/unblock", cfg.MemberHandler.Unblock)
			r.Put("/{id}/card", cfg.MemberHandler.SetPayoutCard)
			r.Post("/{id}/withdrawals", cfg.MemberHandler.Withdraw)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.With(staff).Post("/", cfg.PaymentHandler.Create)
			r.Get("/{id}", cfg.PaymentHandler.Get)
			r.With(staff).Post("/{id}/accept", cfg.PaymentHandler.Accept)
			r.With(staff).Post("/{id}/block", cfg.PaymentHandler.Block)
			r.Get("/{id}/entries", cfg.PaymentHandler.Entries)
		})

		// Transfers
		r.Post("/transfers", cfg.TransferHandler.Create)

		// Ledger
		r.With(staff).Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
