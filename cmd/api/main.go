package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elitepay/config"
	"elitepay/internal/adapter/email"
	httpDTO "elitepay/internal/adapter/http/dto"
	httpHandler "elitepay/internal/adapter/http/handler"
	pgStorage "elitepay/internal/adapter/storage/postgres"
	redisStorage "elitepay/internal/adapter/storage/redis"
	"elitepay/internal/core/domain"
	"elitepay/internal/core/ports"
	"elitepay/internal/service"
	"elitepay/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting ElitePay wallet ledger")

	if err := httpDTO.RegisterCustomValidators(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register validators")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	healthCheckers := []ports.HealthChecker{pgStorage.NewHealthCheck(pool)}

	// Redis is optional: without it the last-scan cache and rate limiting
	// are disabled, money movement is unaffected.
	var (
		scanCache      ports.ScanCache
		rateLimitStore *redisStorage.RateLimitStore
	)
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, scan cache and rate limiting disabled")
	} else {
		defer rdb.Close()
		scanCache = redisStorage.NewScanCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		log.Info().Msg("Redis connected")
	}

	// Initialize repositories
	cardRepo := pgStorage.NewCardRepo(pool)
	limitRepo := pgStorage.NewLimitRepo(pool)
	scanRepo := pgStorage.NewScanRepo(pool)
	feeRepo := pgStorage.NewFeeRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Receipts are best effort and only sent when SMTP is configured.
	var notifier ports.Notifier
	if mailer := email.NewSMTPMailer(cfg.SMTP, log); mailer != nil {
		notifier = service.NewReceiptService(mailer, log)
		log.Info().Str("host", cfg.SMTP.Host).Msg("SMTP receipts enabled")
	}

	loc := cfg.Ledger.Location()
	policy := service.LedgerPolicy{
		Fee: domain.FeePolicy{
			Threshold: cfg.Ledger.FeeThresholdDecimal(),
			Rate:      cfg.Ledger.FeeRateDecimal(),
		},
		PinThreshold:    cfg.Ledger.PinThresholdDecimal(),
		RewardThreshold: cfg.Ledger.RewardThresholdDecimal(),
	}

	// Initialize business services
	cardSvc := service.NewCardService(cardRepo, scanRepo, scanCache, log)
	limitSvc := service.NewLimitService(limitRepo, cardRepo, txRepo, loc, log)
	ledgerSvc := service.NewLedgerService(cardRepo, txRepo, feeRepo, limitSvc, transactor, notifier, policy, loc, log)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(cfg.Admin.Username, cfg.Admin.PasswordHash, tokenSvc, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Cards:      httpHandler.NewCardHandler(cardSvc, log),
		Ledger:     httpHandler.NewLedgerHandler(ledgerSvc, log),
		Limits:     httpHandler.NewLimitHandler(limitSvc, log),
		Admin:      httpHandler.NewAdminHandler(authSvc, ledgerSvc, log),
		Health:     httpHandler.NewHealthHandler(log, healthCheckers...),
		Tokens:     tokenSvc,
		RateLimits: rateLimitStore,
		Log:        log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
