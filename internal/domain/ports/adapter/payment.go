package adapter

import "context"

// GatewayPayment is the minimal view of a payment fetched from the provider.
type GatewayPayment struct {
	ID       string
	OrderRef string
	Status   string // provider status, e.g. "captured"
	Amount   int64
	Captured bool
}

// RefundResult captures a provider-agnostic result of a refund request.
type RefundResult struct {
	ID     string // provider refund id
	Status string // provider status, e.g. "processed"
}

// PaymentGateway is the hex port for the token payment provider. The core
// never inspects gateway internals beyond this surface.
type PaymentGateway interface {
	Name() string

	// KeyID is the public key the gateway checkout UI is initialized with.
	KeyID() string

	// CreateOrder registers a payment intent and returns the provider order id.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (orderRef string, err error)

	// VerifySignature checks the gateway's HMAC over "orderRef|paymentID".
	// A false return means the callback cannot be trusted.
	VerifySignature(orderRef, paymentID, signature string) bool

	// FetchPayment loads the payment from the provider for authoritative
	// status confirmation after the client-side success callback.
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)

	// Refund returns the token amount to the customer.
	Refund(ctx context.Context, paymentID string, amount int64) (RefundResult, error)
}
