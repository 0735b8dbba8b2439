package model

// OTPPhase enumerates the states of the code issuance/verification machine.
type OTPPhase string

const (
	OTPIdle      OTPPhase = "idle"
	OTPSending   OTPPhase = "sending"
	OTPSent      OTPPhase = "sent"
	OTPVerifying OTPPhase = "verifying"
	OTPVerified  OTPPhase = "verified"
	OTPFailed    OTPPhase = "failed"
)

// OTPState is the full state of the OTP flow at a point in time.
// ExpiresIn is only meaningful in the Sent phase, Reason only in Failed.
type OTPState struct {
	Phase     OTPPhase `json:"phase"`
	ExpiresIn int      `json:"expires_in,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// Terminal reports whether the flow reached its success state. Verified
// never regresses except through an explicit form reset.
func (s OTPState) Terminal() bool { return s.Phase == OTPVerified }

// InFlight reports whether a server round-trip is outstanding. At most one
// request per flow may be in flight; triggers while in flight are no-ops.
func (s OTPState) InFlight() bool {
	return s.Phase == OTPSending || s.Phase == OTPVerifying
}

// OTPCodeLength is the number of digits in an issued passcode.
const OTPCodeLength = 6
