package verification

import (
	"context"
	"sync"
	"time"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
)

// Default delays for the optimistic-feedback view and the simulated gateway
// round-trip in test mode. Tests shrink these to zero.
const (
	DefaultFeedbackTTL   = 5 * time.Second
	DefaultTestModeDelay = 1500 * time.Millisecond
)

// TokenFlow is the token payment state machine: order creation, handoff to
// the gateway's own checkout UI, and authoritative server-side verification
// of the gateway's success callback.
//
// The gateway success callback shows optimistic success feedback before the
// server has confirmed anything; Paid is only reached after server
// confirmation, and a failed confirmation downgrades the visible status to
// Failed even though the success view was already shown.
type TokenFlow struct {
	mu sync.Mutex

	cfg      model.VerificationRequirements
	orders   OrderServer
	verifier PaymentVerifier
	markers  MarkerSetter

	state     model.TokenPaymentState
	order     *model.OrderDetails
	confirmed bool
	feedback  bool

	sessionID string
	prefill   model.CustomerPrefill

	// FeedbackTTL is how long the optimistic success view stays up before
	// auto-dismissing. TestModeDelay is the simulated gateway delay before
	// test mode reports Paid; zero or negative makes both synchronous.
	FeedbackTTL   time.Duration
	TestModeDelay time.Duration

	dismiss *time.Timer

	onChange func()
}

// NewTokenFlow constructs an idle flow bound to a verification session.
func NewTokenFlow(cfg model.VerificationRequirements, sessionID string, orders OrderServer, verifier PaymentVerifier, markers MarkerSetter, onChange func()) *TokenFlow {
	return &TokenFlow{
		cfg:           cfg,
		orders:        orders,
		verifier:      verifier,
		markers:       markers,
		state:         model.TokenPaymentState{Phase: model.TokenIdle},
		sessionID:     sessionID,
		FeedbackTTL:   DefaultFeedbackTTL,
		TestModeDelay: DefaultTestModeDelay,
		onChange:      onChange,
	}
}

// State returns the current flow state.
func (f *TokenFlow) State() model.TokenPaymentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Confirmed reports whether the user ticked the confirmation checkbox.
func (f *TokenFlow) Confirmed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmed
}

// FeedbackVisible reports whether the optimistic success view is showing.
func (f *TokenFlow) FeedbackVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feedback
}

// Order returns the gateway checkout payload from the last order creation,
// nil before any order exists.
func (f *TokenFlow) Order() *model.OrderDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.order
}

// SetPrefill records the customer contact details handed to the gateway UI.
func (f *TokenFlow) SetPrefill(p model.CustomerPrefill) {
	f.mu.Lock()
	f.prefill = p
	f.mu.Unlock()
}

// Pay starts the payment: creates an order at the payment-order server and
// either hands off to the gateway or, in test mode, simulates a successful
// gateway round-trip. A second trigger while one is in flight is a no-op.
func (f *TokenFlow) Pay(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.state.InFlight():
		f.mu.Unlock()
		return domain.ErrRequestInFlight
	case f.state.Terminal():
		f.mu.Unlock()
		return nil
	case f.state.Phase == model.TokenAwaitingGateway:
		f.mu.Unlock()
		return domain.ErrRequestInFlight
	}
	sessionID, prefill := f.sessionID, f.prefill
	f.state = model.TokenPaymentState{Phase: model.TokenCreatingOrder}
	f.mu.Unlock()
	f.notify()

	details, err := f.orders.CreateOrder(ctx, sessionID, prefill)

	f.mu.Lock()
	if f.state.Phase != model.TokenCreatingOrder {
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		f.state = model.TokenPaymentState{Phase: model.TokenFailed, Reason: reasonFor(err, genericOrderFailure)}
		f.mu.Unlock()
		f.notify()
		return err
	}
	f.order = details
	if details.TestMode {
		f.showFeedbackLocked()
		delay := f.TestModeDelay
		f.mu.Unlock()
		f.notify()
		f.settleTestMode(delay)
		return nil
	}
	f.state = model.TokenPaymentState{Phase: model.TokenAwaitingGateway, OrderRef: details.OrderRef}
	f.mu.Unlock()
	f.notify()
	return nil
}

// settleTestMode simulates gateway success after the configured display
// delay. No gateway interaction happens in test mode.
func (f *TokenFlow) settleTestMode(delay time.Duration) {
	settle := func() {
		f.mu.Lock()
		if f.state.Phase != model.TokenCreatingOrder {
			f.mu.Unlock()
			return
		}
		f.state = model.TokenPaymentState{Phase: model.TokenPaid}
		f.mu.Unlock()
		f.syncMarker()
		f.notify()
	}
	if delay <= 0 {
		settle()
		return
	}
	time.AfterFunc(delay, settle)
}

// GatewaySucceeded is the gateway checkout's success callback. It surfaces
// optimistic success feedback immediately, then asks the server for
// authoritative confirmation. The final state is Paid only if confirmation
// succeeds; a rejection rolls the feedback back and lands in Failed.
func (f *TokenFlow) GatewaySucceeded(ctx context.Context, paymentID, orderRef, signature string) error {
	f.mu.Lock()
	if f.state.Phase != model.TokenAwaitingGateway {
		f.mu.Unlock()
		return domain.ErrPaymentNotPending
	}
	f.showFeedbackLocked()
	f.state = model.TokenPaymentState{Phase: model.TokenVerifyingOnServer, OrderRef: orderRef}
	f.mu.Unlock()
	f.notify()

	err := f.verifier.VerifyPayment(ctx, paymentID, orderRef, signature)

	f.mu.Lock()
	if f.state.Phase != model.TokenVerifyingOnServer {
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		f.state = model.TokenPaymentState{Phase: model.TokenFailed, OrderRef: orderRef, Reason: reasonFor(err, genericConfirmFail)}
		f.hideFeedbackLocked()
		f.mu.Unlock()
		f.notify()
		return err
	}
	f.state = model.TokenPaymentState{Phase: model.TokenPaid, OrderRef: orderRef}
	f.mu.Unlock()
	f.syncMarker()
	f.notify()
	return nil
}

// GatewayFailed is the gateway checkout's failure/cancellation callback.
// If it races in after optimistic success was already shown, the feedback
// is explicitly rolled back; Paid-looking UI never survives a gateway
// failure event.
func (f *TokenFlow) GatewayFailed(ctx context.Context, reason string) error {
	f.mu.Lock()
	switch f.state.Phase {
	case model.TokenAwaitingGateway, model.TokenVerifyingOnServer:
	default:
		f.mu.Unlock()
		return domain.ErrPaymentNotPending
	}
	orderRef := f.state.OrderRef
	f.state = model.TokenPaymentState{Phase: model.TokenFailed, OrderRef: orderRef, Reason: reason}
	f.hideFeedbackLocked()
	f.mu.Unlock()
	f.notify()

	// best effort: the flow outcome does not depend on the report landing
	_ = f.verifier.ReportFailure(ctx, orderRef, reason)
	return nil
}

// SetConfirmed records the confirmation checkbox. Reaching Paid alone does
// not set the token_verified marker; the user must also tick the checkbox
// while the payment is Paid.
func (f *TokenFlow) SetConfirmed(checked bool) {
	f.mu.Lock()
	f.confirmed = checked
	f.mu.Unlock()
	f.syncMarker()
	f.notify()
}

// syncMarker keeps the token_verified marker equal to (Paid && confirmed).
func (f *TokenFlow) syncMarker() {
	f.mu.Lock()
	set := f.confirmed && f.state.Terminal()
	f.mu.Unlock()
	f.markers.SetTokenVerified(set)
}

// Reset returns the flow to Idle, clearing feedback, confirmation, and the
// checkout marker. Used on session teardown.
func (f *TokenFlow) Reset() {
	f.mu.Lock()
	f.state = model.TokenPaymentState{Phase: model.TokenIdle}
	f.order = nil
	f.confirmed = false
	f.hideFeedbackLocked()
	f.mu.Unlock()
	f.markers.SetTokenVerified(false)
	f.notify()
}

// showFeedbackLocked displays the optimistic success view and schedules its
// auto-dismiss. Caller holds f.mu.
func (f *TokenFlow) showFeedbackLocked() {
	f.feedback = true
	if f.dismiss != nil {
		f.dismiss.Stop()
	}
	if f.FeedbackTTL > 0 {
		f.dismiss = time.AfterFunc(f.FeedbackTTL, func() {
			f.mu.Lock()
			f.feedback = false
			f.dismiss = nil
			f.mu.Unlock()
			f.notify()
		})
	}
}

// hideFeedbackLocked rolls the optimistic view back. Caller holds f.mu.
func (f *TokenFlow) hideFeedbackLocked() {
	f.feedback = false
	if f.dismiss != nil {
		f.dismiss.Stop()
		f.dismiss = nil
	}
}

// restore rehydrates the flow from a persisted snapshot.
func (f *TokenFlow) restore(state model.TokenPaymentState, confirmed bool) {
	f.mu.Lock()
	f.state = state
	f.confirmed = confirmed
	f.mu.Unlock()
}

func (f *TokenFlow) notify() {
	if f.onChange != nil {
		f.onChange()
	}
}
