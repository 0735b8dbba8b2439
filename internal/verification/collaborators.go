// Package verification holds the checkout gating state machines: the OTP
// flow, the token payment flow, and the gate that aggregates them. The
// flows are plain state machines driven by user actions and collaborator
// results; everything behind a network boundary is an injected interface
// so the package tests with fakes.
package verification

import (
	"context"
	"errors"

	"cod-verifier/internal/domain/model"
)

// Rejection is an explicit business-rule failure from a server collaborator.
// Anything else coming back over the wire (no response, garbled response) is
// treated as a network error and surfaced with a generic message, but both
// leave the flow in the same retryable state.
type Rejection struct {
	Reason string
	Cause  error // the underlying sentinel, kept for classification
}

func (r *Rejection) Error() string { return r.Reason }

func (r *Rejection) Unwrap() error { return r.Cause }

// Reject wraps a reason into a Rejection error.
func Reject(reason string) error { return &Rejection{Reason: reason} }

// RejectCause wraps a reason and its underlying error into a Rejection.
func RejectCause(reason string, cause error) error {
	return &Rejection{Reason: reason, Cause: cause}
}

// reasonFor maps a collaborator error to a user-visible failure reason.
func reasonFor(err error, generic string) string {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return generic
}

// SendReceipt is the OTP server's acceptance of a send-code request.
// TestCode is populated only in test mode, where the passcode is surfaced
// to the caller instead of being delivered over SMS.
type SendReceipt struct {
	TTLSeconds int
	TestCode   string
}

// OTPServer is the server collaborator behind the OTP flow.
type OTPServer interface {
	SendCode(ctx context.Context, phone model.PhoneCandidate) (SendReceipt, error)
	VerifyCode(ctx context.Context, phone model.PhoneCandidate, code string) error
}

// OrderServer is the payment-order server collaborator: it creates the
// gateway order the checkout UI is handed off to.
type OrderServer interface {
	CreateOrder(ctx context.Context, sessionID string, prefill model.CustomerPrefill) (*model.OrderDetails, error)
}

// PaymentVerifier is the server collaborator that authoritatively confirms
// a gateway success callback, and records explicit gateway failures.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, paymentID, orderRef, signature string) error
	ReportFailure(ctx context.Context, orderRef, reason string) error
}

// MarkerSetter owns the hidden checkout-form marker fields. Flows set these
// only on terminal success and clear them on reset.
type MarkerSetter interface {
	SetOTPVerified(bool)
	SetTokenVerified(bool)
}

// HostPage is the checkout page boundary: the single place-order control,
// the warning banner, and the verification panel the gate shows or hides.
type HostPage interface {
	SetPlaceOrderEnabled(bool)
	SetWarningVisible(bool)
	SetPanelVisible(bool)
	Render(UIStatus)
}

// Generic failure messages, used when a collaborator dies without an
// explicit rejection.
const (
	genericSendFailure   = "Failed to send OTP. Please try again."
	genericVerifyFailure = "OTP verification failed. Please try again."
	genericOrderFailure  = "An error occurred while preparing payment. Please try again."
	genericConfirmFail   = "Payment verification failed. Please contact support."
)
