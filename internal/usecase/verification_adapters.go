// File: internal/usecase/verification_adapters.go
package usecase

import (
	"context"
	"errors"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/verification"
)

// Compile-time checks
var (
	_ verification.OTPServer       = (*OTPServerAdapter)(nil)
	_ verification.OrderServer     = (*OrderServerAdapter)(nil)
	_ verification.PaymentVerifier = (*PaymentVerifierAdapter)(nil)
)

// OTPServerAdapter presents the OTP usecase as the flow's server
// collaborator. Business-rule failures become explicit rejections with the
// message the shopper should see; anything else passes through and the flow
// falls back to its generic failure text.
type OTPServerAdapter struct {
	UC OTPUseCase
}

func (a *OTPServerAdapter) SendCode(ctx context.Context, phone model.PhoneCandidate) (verification.SendReceipt, error) {
	res, err := a.UC.SendCode(ctx, phone)
	if err != nil {
		return verification.SendReceipt{}, rejectionFor(err)
	}
	return verification.SendReceipt{TTLSeconds: res.ResendIn, TestCode: res.TestCode}, nil
}

func (a *OTPServerAdapter) VerifyCode(ctx context.Context, phone model.PhoneCandidate, code string) error {
	if err := a.UC.VerifyCode(ctx, phone, code); err != nil {
		return rejectionFor(err)
	}
	return nil
}

// OrderServerAdapter presents the token payment usecase as the flow's
// payment-order collaborator.
type OrderServerAdapter struct {
	UC TokenPaymentUseCase
}

func (a *OrderServerAdapter) CreateOrder(ctx context.Context, sessionID string, prefill model.CustomerPrefill) (*model.OrderDetails, error) {
	details, err := a.UC.CreateOrder(ctx, sessionID, prefill)
	if err != nil {
		return nil, rejectionFor(err)
	}
	return details, nil
}

// PaymentVerifierAdapter presents the token payment usecase as the flow's
// verification collaborator.
type PaymentVerifierAdapter struct {
	UC TokenPaymentUseCase
}

func (a *PaymentVerifierAdapter) VerifyPayment(ctx context.Context, paymentID, orderRef, signature string) error {
	if err := a.UC.VerifyPayment(ctx, paymentID, orderRef, signature); err != nil {
		return rejectionFor(err)
	}
	return nil
}

func (a *PaymentVerifierAdapter) ReportFailure(ctx context.Context, orderRef, reason string) error {
	return a.UC.RecordFailure(ctx, orderRef, reason)
}

// rejectionFor maps domain sentinels to the message shown in the panel.
// Unmapped errors are returned unchanged so the flow uses its generic text
// and nothing internal leaks to the shopper.
func rejectionFor(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPhone), errors.Is(err, domain.ErrRegionNotAllowed):
		return verification.RejectCause("Please enter a valid phone number.", err)
	case errors.Is(err, domain.ErrCooldownActive):
		return verification.RejectCause("Please wait before requesting another OTP.", err)
	case errors.Is(err, domain.ErrRateLimited):
		return verification.RejectCause("Too many OTP requests. Please try again later.", err)
	case errors.Is(err, domain.ErrCodeExpired):
		return verification.RejectCause("OTP expired. Please request a new one.", err)
	case errors.Is(err, domain.ErrCodeMismatch):
		return verification.RejectCause("Invalid OTP. Please try again.", err)
	case errors.Is(err, domain.ErrTooManyAttempts):
		return verification.RejectCause("Too many incorrect attempts. Please request a new OTP.", err)
	case errors.Is(err, domain.ErrSignatureMismatch), errors.Is(err, domain.ErrPaymentNotPending):
		return verification.RejectCause("Payment verification failed. Please contact support.", err)
	default:
		return err
	}
}
