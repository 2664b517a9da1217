package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/tradeledger/internal/adapter/http"
	"github.com/iho/tradeledger/internal/adapter/http/handler"
	"github.com/iho/tradeledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/tradeledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/tradeledger/internal/adapter/repository/redis"
	"github.com/iho/tradeledger/internal/infrastructure/auth"
	"github.com/iho/tradeledger/internal/infrastructure/config"
	"github.com/iho/tradeledger/internal/infrastructure/eventpublisher"
	"github.com/iho/tradeledger/internal/infrastructure/logger"
	"github.com/iho/tradeledger/internal/infrastructure/metrics"
	"github.com/iho/tradeledger/internal/infrastructure/postgres"
	"github.com/iho/tradeledger/internal/infrastructure/redis"
	"github.com/iho/tradeledger/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "tradeledger",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)
	metrics.RegisterPoolStats(registry, func() (int32, int32, int32) {
		s := pool.Stat()
		return s.AcquiredConns(), s.IdleConns(), s.TotalConns()
	})

	// Notifications
	dispatcher := eventpublisher.NewDispatcher(eventpublisher.Config{
		Publisher:  newPublisher(cfg, redisClient, log),
		Observer:   m,
		Logger:     log,
		BufferSize: cfg.NotifyBufferSize,
	})
	dispatcherDone := make(chan struct{})
	dispatcherCtx, stopDispatcher := context.WithCancel(context.WithoutCancel(ctx))
	go func() {
		defer close(dispatcherDone)
		_ = dispatcher.Start(dispatcherCtx)
	}()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	memberRepo := postgresRepo.NewMemberRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	uow := usecase.NewUnitOfWork(txManager,
		usecase.WithRetrier(postgresRepo.NewRetrier(postgresRepo.DefaultRetrierConfig(), log)),
		usecase.WithObserver(m),
		usecase.WithTimeout(cfg.TransactionTimeout),
	)

	// Use cases
	memberUC := usecase.NewMemberUseCase(uow, memberRepo, idGen, dispatcher, cfg.Currency())
	paymentUC := usecase.NewPaymentUseCase(uow, paymentRepo, memberRepo, entryRepo, idGen, dispatcher)
	transferUC := usecase.NewTransferUseCase(uow, memberRepo, idGen, dispatcher)
	entryUC := usecase.NewEntryUseCase(entryRepo, memberRepo)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	routerCfg := httpAdapter.RouterConfig{
		MemberHandler:    handler.NewMemberHandler(memberUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		EntryHandler:     handler.NewEntryHandler(entryUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:           log,
	}

	if verifier := newTokenVerifier(cfg); verifier != nil {
		routerCfg.TokenVerifier = verifier
		log.Info().Msg("JWT authentication enabled")
	} else {
		log.Warn().Msg("authentication disabled, all API calls run as the system identity")
	}

	limiterStop := make(chan struct{})
	defer close(limiterStop)
	if limiter := newRateLimiter(cfg); limiter != nil {
		routerCfg.RateLimiter = limiter
		go limiter.RunCleanup(limiterCleanupInterval, limiterMaxIdle, limiterStop)
	}

	server := newHTTPServer(cfg, httpAdapter.NewRouter(routerCfg))

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")
	case err := <-serverErr:
		runErr = fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Flush notifications queued by requests that finished during shutdown.
	stopDispatcher()
	<-dispatcherDone

	log.Info().Msg("server stopped")

	return runErr
}

func newPublisher(cfg *config.Config, client goredis.UniversalClient, log zerolog.Logger) eventpublisher.Publisher {
	if cfg.NotifyToRedis && client != nil {
		return eventpublisher.NewRedisPublisher(client, cfg.NotifyChannel)
	}
	return eventpublisher.NewLogPublisher(log)
}

func newTokenVerifier(cfg *config.Config) middleware.TokenVerifier {
	if !cfg.AuthEnabled {
		return nil
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
}

func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}
