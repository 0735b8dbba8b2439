// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cod-verifier/internal/config"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/domain/ports/adapter"
	pg "cod-verifier/internal/infra/db/postgres"
	"cod-verifier/internal/infra/logging"
	"cod-verifier/internal/infra/metrics"
	"cod-verifier/internal/infra/payment"
	red "cod-verifier/internal/infra/redis"
	"cod-verifier/internal/infra/sched"
	"cod-verifier/internal/infra/security"
	"cod-verifier/internal/infra/sms"
	"cod-verifier/internal/infra/web"
	"cod-verifier/internal/usecase"
	"cod-verifier/internal/verification"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	logging.Global = *log
	if cfg.Runtime.Dev {
		log.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool := pg.MustConnectPostgres(cfg.Database.URL)
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	otpCodes := red.NewOTPCodeRepo(redisClient)
	sessions := red.NewSessionRepo(redisClient, cfg.Server.SessionTTL)
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Encryption ----
	encSvc, err := security.NewEncryptionService(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("encryption")
	}

	// ---- SMS provider ----
	var smsProvider adapter.SMSProvider
	switch cfg.SMS.Provider {
	case "msg91":
		smsProvider = sms.NewMSG91Provider(cfg.SMS.MSG91.AuthKey, cfg.SMS.MSG91.TemplateID, cfg.SMS.MSG91.BaseURL)
	default:
		// test and dev environments capture codes instead of sending them
		smsProvider = sms.NewCaptureProvider(*log)
	}

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Verification.TestMode {
		gateway = payment.NewNoopPaymentGateway()
	} else {
		gateway = payment.NewRazorpayGateway(cfg.Payment.Razorpay.KeyID, cfg.Payment.Razorpay.KeySecret, cfg.Payment.Razorpay.BaseURL)
	}
	log.Info().Str("gateway", gateway.Name()).Msg("payment gateway ready")

	// ---- Repositories ----
	paymentsRepo := pg.NewTokenPaymentRepo(pool)

	// ---- Use cases ----
	regions := make([]model.Region, 0, len(cfg.Verification.AllowedRegions))
	for _, r := range cfg.Verification.AllowedRegions {
		regions = append(regions, model.Region(r))
	}
	otpUC := usecase.NewOTPUseCase(usecase.OTPConfig{
		CodeTTL:        cfg.OTP.CodeTTL,
		ResendCooldown: cfg.OTP.ResendCooldown,
		MaxAttempts:    cfg.OTP.MaxAttempts,
		SendLimit:      cfg.OTP.SendLimit,
		SendWindow:     cfg.OTP.SendWindow,
		TestMode:       cfg.Verification.TestMode,
	}, regions, otpCodes, smsProvider, rateLimiter, *log)
	tokenUC := usecase.NewTokenPaymentUseCase(usecase.TokenConfig{
		Amount:   cfg.Payment.Token.Amount,
		Currency: cfg.Payment.Token.Currency,
		TestMode: cfg.Verification.TestMode,
	}, paymentsRepo, gateway, *log)

	// ---- Verification sessions ----
	manager := verification.NewManager(verification.ManagerDeps{
		Requirements: model.VerificationRequirements{
			OTPEnabled:      cfg.Verification.OTPEnabled,
			TokenEnabled:    cfg.Verification.TokenEnabled,
			AllowedRegions:  regions,
			OTPTimerSeconds: cfg.Verification.OTPTimerSeconds,
			TestMode:        cfg.Verification.TestMode,
		},
		OTPServer:   &usecase.OTPServerAdapter{UC: otpUC},
		OrderServer: &usecase.OrderServerAdapter{UC: tokenUC},
		Verifier:    &usecase.PaymentVerifierAdapter{UC: tokenUC},
		Sessions:    sessions,
		Encryptor:   encSvc,
		Logger:      log,
	})

	// ---- Public API ----
	auth := web.NewAuthManager(cfg.Server.SessionSecret, !cfg.Runtime.Dev, "", cfg.Server.SessionTTL)
	apiServer := web.NewServer(manager, auth, cfg.Server.AllowedOrigins, log)
	public := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", public.Addr).Msg("public API listening")
		if err := public.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("public server")
		}
	}()

	// ---- Ops endpoint (metrics) ----
	opsMux := http.NewServeMux()
	opsMux.Handle("/metrics", promhttp.Handler())
	ops := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler:           opsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", ops.Addr).Msg("ops endpoint listening")
		if err := ops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ops server")
		}
	}()

	// ---- Background workers ----
	reconciler := sched.NewPaymentReconciler(tokenUC, locker, cfg.Scheduler.ReconcileInterval, cfg.Scheduler.ReconcileAfter, log)
	go func() { _ = reconciler.Run(ctx) }()
	refunder := sched.NewRefundWorker(tokenUC, locker, cfg.Scheduler.RefundInterval, cfg.Scheduler.RefundAfter, log)
	go func() { _ = refunder.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = public.Shutdown(shutdownCtx)
	_ = ops.Shutdown(shutdownCtx)
}
