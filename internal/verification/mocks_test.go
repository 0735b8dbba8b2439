package verification

import (
	"context"
	"sync"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/domain/ports/repository"
)

// fakeOTPServer is a scriptable OTP server collaborator.
type fakeOTPServer struct {
	mu          sync.Mutex
	sendErr     error
	verifyErr   error
	receipt     SendReceipt
	sendCalls   int
	verifyCalls int
	lastPhone   model.PhoneCandidate
	lastCode    string
}

func (f *fakeOTPServer) SendCode(ctx context.Context, phone model.PhoneCandidate) (SendReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	f.lastPhone = phone
	if f.sendErr != nil {
		return SendReceipt{}, f.sendErr
	}
	return f.receipt, nil
}

func (f *fakeOTPServer) VerifyCode(ctx context.Context, phone model.PhoneCandidate, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	f.lastPhone = phone
	f.lastCode = code
	return f.verifyErr
}

// fakeOrderServer is a scriptable payment-order collaborator.
type fakeOrderServer struct {
	mu      sync.Mutex
	details *model.OrderDetails
	err     error
	calls   int
}

func (f *fakeOrderServer) CreateOrder(ctx context.Context, sessionID string, prefill model.CustomerPrefill) (*model.OrderDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

// fakeVerifier is a scriptable payment verification collaborator.
type fakeVerifier struct {
	mu          sync.Mutex
	verifyErr   error
	verifyCalls int
	failures    []string
}

func (f *fakeVerifier) VerifyPayment(ctx context.Context, paymentID, orderRef, signature string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	return f.verifyErr
}

func (f *fakeVerifier) ReportFailure(ctx context.Context, orderRef, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, reason)
	return nil
}

// memMarkers records marker field changes.
type memMarkers struct {
	mu      sync.Mutex
	markers model.Markers
}

func (m *memMarkers) SetOTPVerified(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers.OTPVerified = v
}

func (m *memMarkers) SetTokenVerified(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers.TokenVerified = v
}

func (m *memMarkers) get() model.Markers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markers
}

// memSessionRepo is an in-memory session snapshot store.
type memSessionRepo struct {
	mu    sync.Mutex
	store map[string]*repository.SessionSnapshot
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{store: make(map[string]*repository.SessionSnapshot)}
}

func (m *memSessionRepo) Set(ctx context.Context, id string, snap *repository.SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	m.store[id] = &cp
	return nil
}

func (m *memSessionRepo) Get(ctx context.Context, id string) (*repository.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (m *memSessionRepo) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

// recordingHost captures everything the gate pushes to the host page.
type recordingHost struct {
	mu         sync.Mutex
	placeOrder bool
	warning    bool
	panel      bool
	last       UIStatus
	renders    int
}

func (h *recordingHost) SetPlaceOrderEnabled(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.placeOrder = v
}

func (h *recordingHost) SetWarningVisible(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warning = v
}

func (h *recordingHost) SetPanelVisible(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panel = v
}

func (h *recordingHost) Render(st UIStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = st
	h.renders++
}