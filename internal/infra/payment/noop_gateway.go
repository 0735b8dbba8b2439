package payment

import (
	"context"
	"fmt"
	"sync"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway to use in tests and dev
// setups without Razorpay credentials. Every signature verifies and every
// created order can be fetched back as captured.
type NoopPaymentGateway struct {
	mu     sync.Mutex
	seq    int64
	orders map[string]int64 // orderRef -> amount
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{orders: make(map[string]int64)}
}

func (g *NoopPaymentGateway) Name() string  { return "noop" }
func (g *NoopPaymentGateway) KeyID() string { return "noop_key" }

func (g *NoopPaymentGateway) next(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s-%d", prefix, g.seq)
}

func (g *NoopPaymentGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := g.next("noop-order")
	g.orders[ref] = amount
	return ref, nil
}

func (g *NoopPaymentGateway) VerifySignature(orderRef, paymentID, signature string) bool {
	return true
}

func (g *NoopPaymentGateway) FetchPayment(ctx context.Context, paymentID string) (*adapter.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	// a noop payment id embeds the order it belongs to: "<orderRef>/pay"
	for ref, amount := range g.orders {
		if paymentID == ref+"/pay" {
			return &adapter.GatewayPayment{
				ID:       paymentID,
				OrderRef: ref,
				Status:   "captured",
				Amount:   amount,
				Captured: true,
			}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (g *NoopPaymentGateway) Refund(ctx context.Context, paymentID string, amount int64) (adapter.RefundResult, error) {
	return adapter.RefundResult{ID: g.next("noop-refund"), Status: "processed"}, nil
}
