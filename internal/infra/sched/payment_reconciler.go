package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cod-verifier/internal/infra/metrics"
	"cod-verifier/internal/infra/redis"
	"cod-verifier/internal/usecase"
)

// PaymentReconciler periodically fails token orders the gateway never came
// back for. This covers shoppers who opened the checkout and walked away,
// and callbacks lost to crashes; without it a pending order would sit in
// "created" forever.
type PaymentReconciler struct {
	uc         usecase.TokenPaymentUseCase
	locker     redis.Locker
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a created order must be to fail it
	log        *zerolog.Logger
}

func NewPaymentReconciler(uc usecase.TokenPaymentUseCase, locker redis.Locker, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	l := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{uc: uc, locker: locker, interval: interval, staleAfter: staleAfter, log: &l}
}

func (w *PaymentReconciler) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting payment reconciler")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment reconciler")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	// only one instance sweeps at a time
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, "lock:payment_reconciler", w.interval)
		if err != nil {
			return
		}
		defer func() { _ = w.locker.Unlock(ctx, "lock:payment_reconciler", token) }()
	}

	n, err := w.uc.ReconcileStale(ctx, w.staleAfter, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("reconcile error")
		return
	}
	if n > 0 {
		metrics.TokenOrdersReconciled.Add(float64(n))
		w.log.Info().Int("count", n).Msg("stale token orders failed")
	}
}
