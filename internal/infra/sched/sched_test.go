package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/usecase"
)

type stubTokenUC struct {
	reconciled int32
	refunded   int32
}

func (s *stubTokenUC) CreateOrder(ctx context.Context, sessionID string, prefill model.CustomerPrefill) (*model.OrderDetails, error) {
	return nil, nil
}
func (s *stubTokenUC) VerifyPayment(ctx context.Context, paymentID, orderRef, signature string) error {
	return nil
}
func (s *stubTokenUC) RecordFailure(ctx context.Context, orderRef, reason string) error { return nil }
func (s *stubTokenUC) ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	atomic.AddInt32(&s.reconciled, 1)
	return 1, nil
}
func (s *stubTokenUC) RefundDue(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	atomic.AddInt32(&s.refunded, 1)
	return 2, nil
}

var _ usecase.TokenPaymentUseCase = (*stubTokenUC)(nil)

func TestPaymentReconciler_Ticks(t *testing.T) {
	uc := &stubTokenUC{}
	log := zerolog.Nop()
	w := NewPaymentReconciler(uc, nil, 10*time.Millisecond, time.Minute, &log)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	if atomic.LoadInt32(&uc.reconciled) == 0 {
		t.Fatal("expected at least one reconcile sweep")
	}
}

func TestRefundWorker_Ticks(t *testing.T) {
	uc := &stubTokenUC{}
	log := zerolog.Nop()
	w := NewRefundWorker(uc, nil, 10*time.Millisecond, time.Hour, &log)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	if atomic.LoadInt32(&uc.refunded) == 0 {
		t.Fatal("expected at least one refund sweep")
	}
}

func TestWorkers_StopOnCancel(t *testing.T) {
	uc := &stubTokenUC{}
	log := zerolog.Nop()
	w := NewRefundWorker(uc, nil, time.Hour, time.Hour, &log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
