package verification

import (
	"fmt"

	"cod-verifier/internal/domain/model"
)

// Badge is a user-visible step status.
type Badge string

const (
	BadgePending  Badge = "Pending"
	BadgeVerified Badge = "Verified"
	BadgeFailed   Badge = "Failed"
)

// UIStatus is everything the checkout page renders for the verification
// panel: badges, button labels/enabled states, inline messages, the
// optimistic feedback view, and the gate outputs. It is a pure projection
// of flow state; computing it has no side effects.
type UIStatus struct {
	PanelVisible bool `json:"panel_visible"`

	OTPBadge   Badge `json:"otp_badge"`
	TokenBadge Badge `json:"token_badge"`

	SendLabel     string `json:"send_label"`
	SendEnabled   bool   `json:"send_enabled"`
	VerifyLabel   string `json:"verify_label"`
	VerifyEnabled bool   `json:"verify_enabled"`
	PayLabel      string `json:"pay_label"`
	PayEnabled    bool   `json:"pay_enabled"`

	OTPMessage   string `json:"otp_message,omitempty"`
	TokenMessage string `json:"token_message,omitempty"`
	HelperText   string `json:"helper_text"`

	FeedbackVisible bool   `json:"feedback_visible"`
	RefundNotice    string `json:"refund_notice,omitempty"`

	WarningVisible    bool `json:"warning_visible"`
	PlaceOrderEnabled bool `json:"place_order_enabled"`
}

// Snapshot is the read-only input to the projection: the two flow states
// plus the handful of inputs that shape labels and enablement.
type Snapshot struct {
	OTP               model.OTPState
	Token             model.TokenPaymentState
	Country           model.CountryCode
	PhoneValid        bool
	CooldownRemaining int
	CodeReady         bool
	Confirmed         bool
	FeedbackVisible   bool
	Complete          bool
	CODSelected       bool
}

const refundNotice = "Your ₹1 token payment was successful. The amount will be refunded automatically within 24 hours."

// Project maps flow state to what the user sees. The flows stay UI-agnostic;
// this is the only place state names become labels and badges.
func Project(s Snapshot) UIStatus {
	st := UIStatus{
		PanelVisible:      s.CODSelected,
		HelperText:        model.HelperText(s.Country),
		PlaceOrderEnabled: !s.CODSelected || s.Complete,
		WarningVisible:    s.CODSelected && !s.Complete,
		FeedbackVisible:   s.FeedbackVisible,
	}

	// OTP step
	switch s.OTP.Phase {
	case model.OTPVerified:
		st.OTPBadge = BadgeVerified
	case model.OTPFailed:
		st.OTPBadge = BadgeFailed
		st.OTPMessage = s.OTP.Reason
	default:
		st.OTPBadge = BadgePending
	}

	switch {
	case s.OTP.Phase == model.OTPSending:
		st.SendLabel = "Sending..."
	case s.CooldownRemaining > 0:
		st.SendLabel = fmt.Sprintf("Resend (%ds)", s.CooldownRemaining)
	case s.OTP.Phase == model.OTPSent:
		st.SendLabel = "Resend OTP"
	default:
		st.SendLabel = "Send OTP"
	}
	st.SendEnabled = s.PhoneValid &&
		s.CooldownRemaining == 0 &&
		!s.OTP.InFlight() &&
		s.OTP.Phase != model.OTPVerified

	switch s.OTP.Phase {
	case model.OTPVerifying:
		st.VerifyLabel = "Verifying..."
	case model.OTPVerified:
		st.VerifyLabel = "✓ Verified"
	default:
		st.VerifyLabel = "Verify"
	}
	st.VerifyEnabled = s.CodeReady &&
		!s.OTP.InFlight() &&
		s.OTP.Phase != model.OTPVerified

	// Token step
	switch {
	case s.Token.Phase == model.TokenPaid:
		st.TokenBadge = BadgeVerified
	case s.Token.Phase == model.TokenFailed:
		st.TokenBadge = BadgeFailed
		st.TokenMessage = s.Token.Reason
	default:
		st.TokenBadge = BadgePending
	}

	if s.Token.InFlight() || s.Token.Phase == model.TokenAwaitingGateway {
		st.PayLabel = "Processing Payment..."
	} else {
		st.PayLabel = "Pay ₹1 Token"
	}
	st.PayEnabled = !s.Token.InFlight() &&
		s.Token.Phase != model.TokenAwaitingGateway &&
		s.Token.Phase != model.TokenPaid

	if s.FeedbackVisible {
		st.RefundNotice = refundNotice
	}
	if !s.CODSelected {
		// panel hidden: the gate is irrelevant for other payment methods
		st.WarningVisible = false
	}
	return st
}
