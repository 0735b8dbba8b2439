// File: internal/usecase/token_payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/domain/ports/adapter"
	"cod-verifier/internal/domain/ports/repository"
)

// Compile-time check
var _ TokenPaymentUseCase = (*tokenPaymentUC)(nil)

// TokenConfig are the rules for the refundable token charge.
type TokenConfig struct {
	// Amount in minor units (paise). The production default is ₹1.
	Amount   int64
	Currency string
	// TestMode skips the gateway entirely; no order is created.
	TestMode bool
}

type TokenPaymentUseCase interface {
	// CreateOrder registers a gateway order for the session's token charge
	// and persists the pending record.
	CreateOrder(ctx context.Context, sessionID string, prefill model.CustomerPrefill) (*model.OrderDetails, error)
	// VerifyPayment authoritatively confirms a gateway success callback:
	// signature first, then the payment's status at the provider.
	VerifyPayment(ctx context.Context, paymentID, orderRef, signature string) error
	// RecordFailure marks the pending payment failed with the gateway's
	// stated reason.
	RecordFailure(ctx context.Context, orderRef, reason string) error
	// ReconcileStale fails pending orders the gateway never came back for.
	ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
	// RefundDue refunds verified token charges past the holding window.
	RefundDue(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type tokenPaymentUC struct {
	cfg      TokenConfig
	payments repository.TokenPaymentRepository
	gateway  adapter.PaymentGateway
	log      zerolog.Logger
}

func NewTokenPaymentUseCase(cfg TokenConfig, payments repository.TokenPaymentRepository, gateway adapter.PaymentGateway, log zerolog.Logger) *tokenPaymentUC {
	if cfg.Amount <= 0 {
		cfg.Amount = 100
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &tokenPaymentUC{cfg: cfg, payments: payments, gateway: gateway, log: log.With().Str("component", "token_payment_uc").Logger()}
}

func (u *tokenPaymentUC) CreateOrder(ctx context.Context, sessionID string, prefill model.CustomerPrefill) (*model.OrderDetails, error) {
	if u.cfg.TestMode {
		return &model.OrderDetails{TestMode: true}, nil
	}

	receipt := "cod_token_" + sessionID
	orderRef, err := u.gateway.CreateOrder(ctx, u.cfg.Amount, u.cfg.Currency, receipt, map[string]string{
		"purpose":    "cod_token_verification",
		"session_id": sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	now := time.Now()
	p := &model.TokenPayment{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Provider:  u.gateway.Name(),
		OrderRef:  orderRef,
		Amount:    u.cfg.Amount,
		Currency:  u.cfg.Currency,
		Status:    model.PaymentStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.payments.Save(ctx, p); err != nil {
		return nil, err
	}

	u.log.Info().Str("session_id", sessionID).Str("order_ref", orderRef).Msg("token order created")
	return &model.OrderDetails{
		OrderRef: orderRef,
		Amount:   u.cfg.Amount,
		Currency: u.cfg.Currency,
		KeyID:    u.gateway.KeyID(),
		Prefill:  prefill,
	}, nil
}

func (u *tokenPaymentUC) VerifyPayment(ctx context.Context, paymentID, orderRef, signature string) error {
	p, err := u.payments.FindByOrderRef(ctx, orderRef)
	if err != nil {
		return err
	}
	switch p.Status {
	case model.PaymentStatusPaid:
		// callback replay after a successful verification
		return nil
	case model.PaymentStatusCreated:
	default:
		return domain.ErrPaymentNotPending
	}

	if !u.gateway.VerifySignature(orderRef, paymentID, signature) {
		_ = u.payments.UpdateStatus(ctx, p.ID, model.PaymentStatusFailed, "signature mismatch", nil)
		u.log.Warn().Str("order_ref", orderRef).Str("payment_id", paymentID).Msg("token payment signature mismatch")
		return domain.ErrSignatureMismatch
	}

	gp, err := u.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("fetch payment: %w", err)
	}
	if !gp.Captured || gp.OrderRef != orderRef || gp.Amount != p.Amount {
		reason := fmt.Sprintf("gateway state mismatch: status=%s order=%s amount=%d", gp.Status, gp.OrderRef, gp.Amount)
		_ = u.payments.UpdateStatus(ctx, p.ID, model.PaymentStatusFailed, reason, nil)
		u.log.Warn().Str("order_ref", orderRef).Str("reason", reason).Msg("token payment rejected")
		return domain.ErrOperationFailed
	}

	if err := u.payments.SetPaymentID(ctx, p.ID, paymentID); err != nil {
		return err
	}
	now := time.Now()
	if err := u.payments.UpdateStatus(ctx, p.ID, model.PaymentStatusPaid, "", &now); err != nil {
		return err
	}
	u.log.Info().Str("order_ref", orderRef).Str("payment_id", paymentID).Msg("token payment verified")
	return nil
}

func (u *tokenPaymentUC) RecordFailure(ctx context.Context, orderRef, reason string) error {
	p, err := u.payments.FindByOrderRef(ctx, orderRef)
	if err != nil {
		return err
	}
	if p.Status != model.PaymentStatusCreated {
		return domain.ErrPaymentNotPending
	}
	u.log.Info().Str("order_ref", orderRef).Str("reason", reason).Msg("token payment failed at gateway")
	return u.payments.UpdateStatus(ctx, p.ID, model.PaymentStatusFailed, reason, nil)
}

func (u *tokenPaymentUC) ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	stale, err := u.payments.ListCreatedOlderThan(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range stale {
		if err := u.payments.UpdateStatus(ctx, p.ID, model.PaymentStatusFailed, "abandoned", nil); err != nil {
			u.log.Error().Err(err).Str("order_ref", p.OrderRef).Msg("reconcile stale order")
			continue
		}
		n++
	}
	if n > 0 {
		u.log.Info().Int("count", n).Msg("stale token orders reconciled")
	}
	return n, nil
}

func (u *tokenPaymentUC) RefundDue(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	due, err := u.payments.ListPaidOlderThan(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range due {
		res, err := u.gateway.Refund(ctx, p.PaymentID, p.Amount)
		if err != nil {
			u.log.Error().Err(err).Str("payment_id", p.PaymentID).Msg("refund token payment")
			continue
		}
		if err := u.payments.SetRefund(ctx, p.ID, res.ID); err != nil {
			u.log.Error().Err(err).Str("payment_id", p.PaymentID).Msg("record refund")
			continue
		}
		u.log.Info().Str("payment_id", p.PaymentID).Str("refund_id", res.ID).Msg("token payment refunded")
		n++
	}
	return n, nil
}
