// File: internal/usecase/verification_mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/domain/ports/adapter"
	"cod-verifier/internal/domain/ports/repository"
)

func newTestLogger() zerolog.Logger { return zerolog.Nop() }

// memOTPCodeRepo is a small in-memory implementation used by unit tests.
type memOTPCodeRepo struct {
	mu        sync.Mutex
	codes     map[string]*issuedEntry
	cooldowns map[string]time.Time
	storeErr  error // used by tests to simulate store failures
}

type issuedEntry struct {
	code     string
	attempts int
	expires  time.Time
}

func newMemOTPCodeRepo() *memOTPCodeRepo {
	return &memOTPCodeRepo{codes: make(map[string]*issuedEntry), cooldowns: make(map[string]time.Time)}
}

func (m *memOTPCodeRepo) Store(ctx context.Context, phone, code string, ttl time.Duration) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phone] = &issuedEntry{code: code, expires: time.Now().Add(ttl)}
	return nil
}

func (m *memOTPCodeRepo) Get(ctx context.Context, phone string) (*repository.IssuedCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.codes[phone]
	if !ok || time.Now().After(e.expires) {
		return nil, domain.ErrNotFound
	}
	return &repository.IssuedCode{Code: e.code, Attempts: e.attempts}, nil
}

func (m *memOTPCodeRepo) IncrAttempts(ctx context.Context, phone string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.codes[phone]
	if !ok {
		return 0, domain.ErrNotFound
	}
	e.attempts++
	return e.attempts, nil
}

func (m *memOTPCodeRepo) Delete(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, phone)
	return nil
}

func (m *memOTPCodeRepo) SetCooldown(ctx context.Context, phone string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cooldowns[phone] = time.Now().Add(d)
	return nil
}

func (m *memOTPCodeRepo) CooldownRemaining(ctx context.Context, phone string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.cooldowns[phone]
	if !ok {
		return 0, nil
	}
	if d := time.Until(until); d > 0 {
		return d, nil
	}
	return 0, nil
}

// storedCode peeks at the issued code for assertions.
func (m *memOTPCodeRepo) storedCode(phone string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.codes[phone]
	if !ok {
		return ""
	}
	return e.code
}

// memTokenPaymentRepo is a small in-memory implementation used by unit tests.
type memTokenPaymentRepo struct {
	mu      sync.Mutex
	store   map[string]*model.TokenPayment // by ID
	saveErr error
}

func newMemTokenPaymentRepo() *memTokenPaymentRepo {
	return &memTokenPaymentRepo{store: make(map[string]*model.TokenPayment)}
}

func (m *memTokenPaymentRepo) Save(ctx context.Context, p *model.TokenPayment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memTokenPaymentRepo) FindByID(ctx context.Context, id string) (*model.TokenPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memTokenPaymentRepo) FindByOrderRef(ctx context.Context, orderRef string) (*model.TokenPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.OrderRef == orderRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTokenPaymentRepo) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, reason string, paidAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.Reason = reason
	p.PaidAt = paidAt
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memTokenPaymentRepo) SetPaymentID(ctx context.Context, id, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.PaymentID = paymentID
	return nil
}

func (m *memTokenPaymentRepo) SetRefund(ctx context.Context, id, refundID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.RefundID = refundID
	p.Status = model.PaymentStatusRefunded
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memTokenPaymentRepo) ListCreatedOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.TokenPayment, error) {
	return m.listByStatus(model.PaymentStatusCreated, cutoff, limit, false), nil
}

func (m *memTokenPaymentRepo) ListPaidOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.TokenPayment, error) {
	return m.listByStatus(model.PaymentStatusPaid, cutoff, limit, true), nil
}

func (m *memTokenPaymentRepo) listByStatus(status model.PaymentStatus, cutoff time.Time, limit int, byPaidAt bool) []*model.TokenPayment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.TokenPayment
	for _, p := range m.store {
		if p.Status != status {
			continue
		}
		at := p.CreatedAt
		if byPaidAt && p.PaidAt != nil {
			at = *p.PaidAt
		}
		if at.After(cutoff) {
			continue
		}
		cp := *p
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// MockPaymentGateway is a scriptable gateway adapter.
type MockPaymentGateway struct {
	mu sync.Mutex

	createErr    error
	orderRef     string
	sigValid     bool
	fetchErr     error
	fetched      *adapter.GatewayPayment
	refundErr    error
	refundResult adapter.RefundResult

	createCalls int
	refundCalls int
	lastReceipt string
	lastNotes   map[string]string
}

func (g *MockPaymentGateway) Name() string  { return "mockpay" }
func (g *MockPaymentGateway) KeyID() string { return "key_test_123" }

func (g *MockPaymentGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	g.lastReceipt = receipt
	g.lastNotes = notes
	if g.createErr != nil {
		return "", g.createErr
	}
	if g.orderRef == "" {
		return "order_mock_1", nil
	}
	return g.orderRef, nil
}

func (g *MockPaymentGateway) VerifySignature(orderRef, paymentID, signature string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sigValid
}

func (g *MockPaymentGateway) FetchPayment(ctx context.Context, paymentID string) (*adapter.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.fetched, nil
}

func (g *MockPaymentGateway) Refund(ctx context.Context, paymentID string, amount int64) (adapter.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundCalls++
	if g.refundErr != nil {
		return adapter.RefundResult{}, g.refundErr
	}
	return g.refundResult, nil
}

// MockSMSProvider records dispatched codes.
type MockSMSProvider struct {
	mu      sync.Mutex
	sendErr error
	sent    []string // "phone:code"
}

func (s *MockSMSProvider) Name() string { return "mocksms" }

func (s *MockSMSProvider) SendCode(ctx context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, phone+":"+code)
	return nil
}

func (s *MockSMSProvider) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// MockRateLimiter is a scriptable limiter.
type MockRateLimiter struct {
	mu    sync.Mutex
	allow bool
	err   error
	calls int
}

func (l *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.allow, l.err
}
