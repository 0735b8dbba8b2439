package verification

import (
	"context"
	"sync"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
)

// OTPFlow is the code issuance/verification state machine. All state is
// carried inside the flow and exposed read-only; transitions happen only
// through the methods below. At most one server round-trip is outstanding
// at any time: a second trigger while one is in flight is a no-op.
type OTPFlow struct {
	mu sync.Mutex

	cfg     model.VerificationRequirements
	server  OTPServer
	markers MarkerSetter
	timer   *Timer

	state    model.OTPState
	phone    model.PhoneCandidate
	code     string
	testCode string

	onChange func()
}

// NewOTPFlow constructs an idle flow. onChange fires after every state
// transition and after every cooldown tick; the session uses it to
// re-evaluate the gate and re-render status.
func NewOTPFlow(cfg model.VerificationRequirements, server OTPServer, markers MarkerSetter, onChange func()) *OTPFlow {
	f := &OTPFlow{
		cfg:      cfg,
		server:   server,
		markers:  markers,
		state:    model.OTPState{Phase: model.OTPIdle},
		phone:    model.PhoneCandidate{CountryCode: model.CountryIndia}, // panel default
		onChange: onChange,
	}
	f.timer = NewTimer(f.timerTick, f.timerExpired)
	return f
}

// State returns the current flow state.
func (f *OTPFlow) State() model.OTPState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Phone returns the current candidate.
func (f *OTPFlow) Phone() model.PhoneCandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phone
}

// TestCode returns the passcode surfaced by the server in test mode, empty
// otherwise.
func (f *OTPFlow) TestCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.testCode
}

// CooldownRemaining returns the seconds before resend is permitted again.
func (f *OTPFlow) CooldownRemaining() int { return f.timer.Remaining() }

// SetCountry selects a country code. Changing it resets the whole form:
// entered phone and code are cleared, the cooldown is cancelled, and the
// checkout marker is unset.
func (f *OTPFlow) SetCountry(cc model.CountryCode) {
	f.mu.Lock()
	changed := f.phone.CountryCode != cc
	f.mu.Unlock()
	if changed {
		f.ResetForm()
	}
	f.mu.Lock()
	f.phone.CountryCode = cc
	f.mu.Unlock()
	f.notify()
}

// SetPhone records the typed local number. Validity is recomputed by the
// status projection on every change; nothing is persisted.
func (f *OTPFlow) SetPhone(local string) {
	f.mu.Lock()
	f.phone.LocalNumber = local
	f.mu.Unlock()
	f.notify()
}

// EnterCode records the typed passcode. Submit is only enabled once the
// code has exactly six digits.
func (f *OTPFlow) EnterCode(code string) {
	f.mu.Lock()
	f.code = code
	f.mu.Unlock()
	f.notify()
}

// CodeReady reports whether the entered code can be submitted.
func (f *OTPFlow) CodeReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.code) == model.OTPCodeLength
}

// Send requests a passcode for the entered phone number. It refuses when a
// request is already in flight, when the flow is already verified, when the
// number fails validation, or while the resend cooldown is active.
func (f *OTPFlow) Send(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.state.InFlight():
		f.mu.Unlock()
		return domain.ErrRequestInFlight
	case f.state.Terminal():
		f.mu.Unlock()
		return nil
	case !f.phone.Valid():
		f.mu.Unlock()
		return domain.ErrInvalidPhone
	case !f.phone.AllowedIn(f.cfg.AllowedRegions):
		f.mu.Unlock()
		return domain.ErrInvalidPhone
	case f.timer.Running():
		f.mu.Unlock()
		return domain.ErrCooldownActive
	}
	phone := f.phone
	f.state = model.OTPState{Phase: model.OTPSending}
	f.mu.Unlock()
	f.notify()

	receipt, err := f.server.SendCode(ctx, phone)

	f.mu.Lock()
	if f.state.Phase != model.OTPSending {
		// reset raced the round-trip; drop the result
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		f.state = model.OTPState{Phase: model.OTPFailed, Reason: reasonFor(err, genericSendFailure)}
		f.mu.Unlock()
		f.notify()
		return err
	}
	f.state = model.OTPState{Phase: model.OTPSent, ExpiresIn: receipt.TTLSeconds}
	f.testCode = receipt.TestCode
	f.mu.Unlock()
	f.timer.Start(receipt.TTLSeconds)
	f.notify()
	return nil
}

// Verify submits the entered code. Failure keeps the entered code and
// re-enables submit; success is terminal until ResetForm and sets the
// otp_verified checkout marker.
func (f *OTPFlow) Verify(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.state.InFlight():
		f.mu.Unlock()
		return domain.ErrRequestInFlight
	case f.state.Terminal():
		f.mu.Unlock()
		return nil
	case len(f.code) != model.OTPCodeLength:
		f.mu.Unlock()
		return domain.ErrInvalidArgument
	}
	phone, code := f.phone, f.code
	f.state = model.OTPState{Phase: model.OTPVerifying}
	f.mu.Unlock()
	f.notify()

	err := f.server.VerifyCode(ctx, phone, code)

	f.mu.Lock()
	if f.state.Phase != model.OTPVerifying {
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		f.state = model.OTPState{Phase: model.OTPFailed, Reason: reasonFor(err, genericVerifyFailure)}
		f.mu.Unlock()
		f.notify()
		return err
	}
	f.state = model.OTPState{Phase: model.OTPVerified}
	f.mu.Unlock()
	f.timer.Cancel()
	f.markers.SetOTPVerified(true)
	f.notify()
	return nil
}

// ResetForm returns the flow to Idle from any state: entered phone and code
// are cleared, the cooldown timer is cancelled, and the checkout marker is
// unset.
func (f *OTPFlow) ResetForm() {
	f.timer.Cancel()
	f.mu.Lock()
	f.state = model.OTPState{Phase: model.OTPIdle}
	f.phone.LocalNumber = ""
	f.code = ""
	f.testCode = ""
	f.mu.Unlock()
	f.markers.SetOTPVerified(false)
	f.notify()
}

func (f *OTPFlow) timerTick(remaining int) {
	f.mu.Lock()
	if f.state.Phase == model.OTPSent {
		f.state.ExpiresIn = remaining
	}
	f.mu.Unlock()
	f.notify()
}

func (f *OTPFlow) timerExpired() {
	f.mu.Lock()
	if f.state.Phase != model.OTPSent {
		f.mu.Unlock()
		return
	}
	// cooldown over: resend permitted again
	f.state = model.OTPState{Phase: model.OTPIdle}
	f.mu.Unlock()
	f.notify()
}

// restore rehydrates the flow from a persisted snapshot.
func (f *OTPFlow) restore(state model.OTPState, phone model.PhoneCandidate) {
	f.mu.Lock()
	f.state = state
	f.phone = phone
	f.mu.Unlock()
}

func (f *OTPFlow) notify() {
	if f.onChange != nil {
		f.onChange()
	}
}
