package model

// VerificationRequirements is the immutable per-store configuration of the
// checkout gate. It is supplied once at initialization and never changes
// mid-session.
type VerificationRequirements struct {
	OTPEnabled      bool
	TokenEnabled    bool
	AllowedRegions  []Region
	OTPTimerSeconds int
	TestMode        bool
}

// OTPRequired reports whether the OTP step gates checkout.
func (r VerificationRequirements) OTPRequired() bool { return r.OTPEnabled }

// TokenRequired reports whether the token payment step gates checkout.
func (r VerificationRequirements) TokenRequired() bool { return r.TokenEnabled }

// Markers are the hidden checkout-form fields the host platform validates
// server-side before accepting the order.
type Markers struct {
	OTPVerified   bool `json:"otp_verified"`
	TokenVerified bool `json:"token_verified"`
}

// CODPaymentMethod is the host checkout payment method the gate applies to.
// Any other selected method hides the verification panel entirely.
const CODPaymentMethod = "cod"
