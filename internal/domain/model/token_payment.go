package model

import "time"

// TokenPaymentPhase enumerates the states of the token payment machine.
type TokenPaymentPhase string

const (
	TokenIdle              TokenPaymentPhase = "idle"
	TokenCreatingOrder     TokenPaymentPhase = "creating_order"
	TokenAwaitingGateway   TokenPaymentPhase = "awaiting_gateway"
	TokenVerifyingOnServer TokenPaymentPhase = "verifying_on_server"
	TokenPaid              TokenPaymentPhase = "paid"
	TokenFailed            TokenPaymentPhase = "failed"
)

// TokenPaymentState is the full state of the token payment flow. OrderRef is
// set from AwaitingGateway onward, Reason only in Failed.
type TokenPaymentState struct {
	Phase    TokenPaymentPhase `json:"phase"`
	OrderRef string            `json:"order_ref,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

// Terminal reports whether the payment reached its success state. Paid is
// only entered after authoritative server-side verification.
func (s TokenPaymentState) Terminal() bool { return s.Phase == TokenPaid }

// InFlight reports whether a server round-trip is outstanding.
func (s TokenPaymentState) InFlight() bool {
	return s.Phase == TokenCreatingOrder || s.Phase == TokenVerifyingOnServer
}

// PaymentStatus is the lifecycle of a persisted token payment record.
type PaymentStatus string

const (
	PaymentStatusCreated  PaymentStatus = "created"  // order created at the gateway
	PaymentStatusPaid     PaymentStatus = "paid"     // signature + gateway status verified
	PaymentStatusFailed   PaymentStatus = "failed"   // verification failed or gateway reported failure
	PaymentStatusRefunded PaymentStatus = "refunded" // token amount returned to the customer
)

// TokenPayment records the refundable anti-fraud deposit taken before a
// cash-on-delivery order is allowed.
type TokenPayment struct {
	ID        string        // UUID
	SessionID string        // verification session the payment belongs to
	Provider  string        // e.g. "razorpay"
	OrderRef  string        // gateway order id
	PaymentID string        // gateway payment id, set after verification
	RefundID  string        // gateway refund id, set after refund
	Amount    int64         // minor units (paise)
	Currency  string        // e.g. "INR"
	Status    PaymentStatus
	Reason    string        // failure reason when Status is failed
	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}

// CustomerPrefill carries the contact details handed to the gateway checkout.
type CustomerPrefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"contact"`
}

// OrderDetails is what the payment-order collaborator returns to the client:
// either a test-mode marker or everything the gateway checkout needs.
type OrderDetails struct {
	TestMode bool            `json:"test_mode"`
	OrderRef string          `json:"order_id,omitempty"`
	Amount   int64           `json:"amount,omitempty"`
	Currency string          `json:"currency,omitempty"`
	KeyID    string          `json:"key_id,omitempty"`
	Prefill  CustomerPrefill `json:"prefill"`
}
