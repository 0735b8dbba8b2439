package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cod-verifier/internal/infra/metrics"
	"cod-verifier/internal/infra/redis"
	"cod-verifier/internal/usecase"
)

// RefundWorker periodically returns verified token charges to the shopper.
// The token exists only to prove payment intent; the promise on the panel
// is an automatic refund within 24 hours, and this worker is that promise.
type RefundWorker struct {
	uc        usecase.TokenPaymentUseCase
	locker    redis.Locker
	interval  time.Duration
	holdFor   time.Duration // how long a paid token is held before refunding
	log       *zerolog.Logger
}

func NewRefundWorker(uc usecase.TokenPaymentUseCase, locker redis.Locker, interval, holdFor time.Duration, logger *zerolog.Logger) *RefundWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if holdFor <= 0 {
		holdFor = 24 * time.Hour
	}
	l := logger.With().Str("component", "RefundWorker").Logger()
	return &RefundWorker{uc: uc, locker: locker, interval: interval, holdFor: holdFor, log: &l}
}

func (w *RefundWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting refund worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping refund worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *RefundWorker) tick(ctx context.Context) {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, "lock:refund_worker", w.interval)
		if err != nil {
			return
		}
		defer func() { _ = w.locker.Unlock(ctx, "lock:refund_worker", token) }()
	}

	n, err := w.uc.RefundDue(ctx, w.holdFor, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("refund sweep error")
		return
	}
	if n > 0 {
		metrics.TokenRefundsProcessed.Add(float64(n))
		w.log.Info().Int("count", n).Msg("token payments refunded")
	}
}
