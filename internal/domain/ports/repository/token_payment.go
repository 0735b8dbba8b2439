package repository

import (
	"context"
	"time"

	"cod-verifier/internal/domain/model"
)

// TokenPaymentRepository persists token payment records.
type TokenPaymentRepository interface {
	Save(ctx context.Context, p *model.TokenPayment) error
	FindByID(ctx context.Context, id string) (*model.TokenPayment, error)
	FindByOrderRef(ctx context.Context, orderRef string) (*model.TokenPayment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, reason string, paidAt *time.Time) error
	SetPaymentID(ctx context.Context, id, paymentID string) error
	// SetRefund records the gateway refund id and moves the payment to
	// refunded in one step.
	SetRefund(ctx context.Context, id, refundID string) error

	// ListCreatedOlderThan feeds the reconciler: orders that never came back
	// from the gateway.
	ListCreatedOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.TokenPayment, error)
	// ListPaidOlderThan feeds the refund worker.
	ListPaidOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.TokenPayment, error)
}
