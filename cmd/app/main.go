// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"wellness-order-service/internal/config"
	"wellness-order-service/internal/domain/ports/adapter"
	"wellness-order-service/internal/domain/ports/repository"
	commission "wellness-order-service/internal/infra/adapters/commission"
	pg "wellness-order-service/internal/infra/db/postgres"
	"wellness-order-service/internal/infra/logging"
	"wellness-order-service/internal/infra/metrics"
	"wellness-order-service/internal/infra/payment"
	red "wellness-order-service/internal/infra/redis"
	"wellness-order-service/internal/infra/sched"
	"wellness-order-service/internal/infra/web"
	"wellness-order-service/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	var limiter *red.RateLimiter
	var cache red.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
		cache = redisClient
	} else {
		logger.Warn().Msg("redis not configured; rate limiting and package cache disabled")
	}

	// ---- Repositories ----
	orderRepo := pg.NewOrderRepo(pool)
	var packages repository.PackageRepository = pg.NewPackageRepo(pool)
	if cache != nil {
		packages = pg.NewPackageRepoCacheDecorator(packages, cache)
	}
	accountRepo := pg.NewAccountRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	campRepo := pg.NewCampRepo(pool)
	referralRepo := pg.NewReferralRepo(pool)
	partnerRepo := pg.NewPartnerRepo(pool)

	// ---- Adapters ----
	var verifier adapter.SignatureVerifier
	if cfg.Alipay.PublicKey != "" {
		verifier, err = payment.NewAlipayVerifier(cfg.Alipay.PublicKey)
		if err != nil {
			log.Fatalf("alipay verifier: %v", err)
		}
	} else {
		logger.Warn().Msg("alipay public key not configured; callbacks will be rejected")
	}

	var invoker adapter.CommissionInvoker = commission.NoopInvoker{}
	if cfg.Commission.URL != "" {
		invoker, err = commission.NewHTTPInvoker(cfg.Commission.URL, cfg.Commission.APIKey)
		if err != nil {
			log.Fatalf("commission invoker: %v", err)
		}
	}

	// ---- Use cases ----
	benefitUC := usecase.NewBenefitUseCase(packages, accountRepo, subRepo, campRepo, logger)
	referralUC := usecase.NewReferralUseCase(referralRepo, invoker, logger)
	callbackUC := usecase.NewPaymentCallbackUseCase(verifier, orderRepo, benefitUC, referralUC, logger)
	claimUC := usecase.NewGuestClaimUseCase(orderRepo, benefitUC, referralUC, logger)
	redeemUC := usecase.NewSelfRedeemUseCase(partnerRepo, packages, benefitUC, logger)
	orderUC := usecase.NewOrderUseCase(orderRepo, packages, logger)

	// ---- Background repair sweep ----
	txManager := pg.NewTxManager(pool)
	reconciler := sched.NewSubscriptionReconciler(orderRepo, benefitUC, txManager, cfg.Reconciler.Interval, cfg.Reconciler.BatchSize, logger)
	go reconciler.Start(ctx)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret)
	server := web.NewServer(callbackUC, claimUC, redeemUC, orderUC, auth, limiter, logger)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
