package verification

import (
	"sync"

	"cod-verifier/internal/domain/model"
)

// Gate aggregates the two flows into the single authoritative readiness
// check that unlocks order placement. It holds references to the flow
// instances and derives completion on demand; nothing is stored.
type Gate struct {
	mu sync.Mutex

	cfg   model.VerificationRequirements
	otp   *OTPFlow
	token *TokenFlow
	host  HostPage

	codSelected bool
}

// NewGate wires the gate to both flows and the host checkout page. The gate
// starts assuming cash on delivery is selected; the host corrects that via
// PaymentMethodChanged.
func NewGate(cfg model.VerificationRequirements, otp *OTPFlow, token *TokenFlow, host HostPage) *Gate {
	return &Gate{cfg: cfg, otp: otp, token: token, host: host, codSelected: true}
}

// IsComplete reports whether every enabled requirement reached its
// terminal-success condition: OTP verified, and token paid with the
// confirmation checkbox ticked. Order of completion does not matter.
func (g *Gate) IsComplete() bool {
	otpDone := !g.cfg.OTPEnabled || g.otp.State().Terminal()
	tokenDone := !g.cfg.TokenEnabled || (g.token.State().Terminal() && g.token.Confirmed())
	return otpDone && tokenDone
}

// PaymentMethodChanged is the host's notification that the shopper picked a
// different payment method. The gate only applies to cash on delivery; for
// anything else the panel is hidden entirely.
func (g *Gate) PaymentMethodChanged(method string) {
	g.mu.Lock()
	g.codSelected = method == model.CODPaymentMethod
	g.mu.Unlock()
	g.Reevaluate()
}

// CheckoutUpdated is the host's notification that checkout recalculated
// (totals, shipping, re-rendered fragments). The gate re-asserts its
// outputs because the host may have rebuilt the controls.
func (g *Gate) CheckoutUpdated() { g.Reevaluate() }

// CODSelected reports whether the gate currently applies.
func (g *Gate) CODSelected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.codSelected
}

// Reevaluate recomputes completion and drives the host page: place-order
// enablement, the warning banner, panel visibility, and a fresh render of
// the projected status. Called after every transition of either flow and
// after every checkbox change.
func (g *Gate) Reevaluate() {
	g.mu.Lock()
	cod := g.codSelected
	g.mu.Unlock()

	complete := g.IsComplete()
	if !cod {
		// the gate only applies to cash on delivery
		g.host.SetPanelVisible(false)
		g.host.SetWarningVisible(false)
		g.host.SetPlaceOrderEnabled(true)
	} else {
		g.host.SetPanelVisible(true)
		g.host.SetWarningVisible(!complete)
		g.host.SetPlaceOrderEnabled(complete)
	}
	g.host.Render(g.Status())
}

// Status projects the current state of both flows for rendering.
func (g *Gate) Status() UIStatus {
	phone := g.otp.Phone()
	return Project(Snapshot{
		OTP:               g.otp.State(),
		Token:             g.token.State(),
		Country:           phone.CountryCode,
		PhoneValid:        phone.Valid() && phone.AllowedIn(g.cfg.AllowedRegions),
		CooldownRemaining: g.otp.CooldownRemaining(),
		CodeReady:         g.otp.CodeReady(),
		Confirmed:         g.token.Confirmed(),
		FeedbackVisible:   g.token.FeedbackVisible(),
		Complete:          g.IsComplete(),
		CODSelected:       g.CODSelected(),
	})
}
