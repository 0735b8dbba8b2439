package web

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/domain/ports/repository"
	"cod-verifier/internal/verification"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// --- Mock session repository ---

type memSessionRepo struct {
	mu    sync.Mutex
	snaps map[string]*repository.SessionSnapshot
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{snaps: make(map[string]*repository.SessionSnapshot)}
}

func (m *memSessionRepo) Set(ctx context.Context, id string, snap *repository.SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	m.snaps[id] = &cp
	return nil
}

func (m *memSessionRepo) Get(ctx context.Context, id string) (*repository.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (m *memSessionRepo) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
	return nil
}

// --- Mock collaborators ---

type stubOTPServer struct {
	mu        sync.Mutex
	sendErr   error
	verifyErr error
	testCode  string
	sends     int
	verifies  int
}

func (s *stubOTPServer) SendCode(ctx context.Context, phone model.PhoneCandidate) (verification.SendReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends++
	if s.sendErr != nil {
		return verification.SendReceipt{}, s.sendErr
	}
	return verification.SendReceipt{TTLSeconds: 30, TestCode: s.testCode}, nil
}

func (s *stubOTPServer) VerifyCode(ctx context.Context, phone model.PhoneCandidate, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifies++
	return s.verifyErr
}

type stubOrderServer struct {
	mu        sync.Mutex
	createErr error
	orders    int
}

func (s *stubOrderServer) CreateOrder(ctx context.Context, sessionID string, prefill model.CustomerPrefill) (*model.OrderDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &model.OrderDetails{
		OrderRef: "order_test_1",
		Amount:   100,
		Currency: "INR",
		KeyID:    "key_test_123",
		Prefill:  prefill,
	}, nil
}

type stubVerifier struct {
	mu        sync.Mutex
	verifyErr error
	failures  []string
}

func (s *stubVerifier) VerifyPayment(ctx context.Context, paymentID, orderRef, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifyErr
}

func (s *stubVerifier) ReportFailure(ctx context.Context, orderRef, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, reason)
	return nil
}

// --- Fixture ---

type webFixture struct {
	server *Server
	auth   *AuthManager
	otp    *stubOTPServer
	orders *stubOrderServer
	pays   *stubVerifier
	repo   *memSessionRepo
}

func newWebFixture() *webFixture {
	otp := &stubOTPServer{}
	orders := &stubOrderServer{}
	pays := &stubVerifier{}
	repo := newMemSessionRepo()
	log := newTestLogger()

	manager := verification.NewManager(verification.ManagerDeps{
		Requirements: model.VerificationRequirements{
			OTPEnabled:      true,
			TokenEnabled:    true,
			AllowedRegions:  []model.Region{model.RegionGlobal},
			OTPTimerSeconds: 30,
		},
		OTPServer:   otp,
		OrderServer: orders,
		Verifier:    pays,
		Sessions:    repo,
		Logger:      log,
	})
	auth := NewAuthManager("test-session-jwt-secret-please-change", false, "", time.Minute)
	server := NewServer(manager, auth, []string{"https://shop.example"}, log)
	return &webFixture{server: server, auth: auth, otp: otp, orders: orders, pays: pays, repo: repo}
}
