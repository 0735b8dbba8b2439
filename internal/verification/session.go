package verification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/domain/ports/repository"
)

// Encryptor protects the phone number inside persisted snapshots.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Session owns one shopper's verification state: both flows, the gate, the
// marker fields, and the last rendered status. Flow events within a session
// are serialized by the flows' own locking; the session only aggregates.
type Session struct {
	ID string

	OTP   *OTPFlow
	Token *TokenFlow
	Gate  *Gate

	mu      sync.Mutex
	markers model.Markers
	status  UIStatus

	repo repository.SessionRepository
	enc  Encryptor
	log  *zerolog.Logger
}

// Markers returns the current hidden checkout-form marker fields.
func (s *Session) Markers() model.Markers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers
}

// Status returns the last rendered panel status.
func (s *Session) Status() UIStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetOTPVerified implements MarkerSetter.
func (s *Session) SetOTPVerified(v bool) {
	s.mu.Lock()
	s.markers.OTPVerified = v
	s.mu.Unlock()
}

// SetTokenVerified implements MarkerSetter.
func (s *Session) SetTokenVerified(v bool) {
	s.mu.Lock()
	s.markers.TokenVerified = v
	s.mu.Unlock()
}

// SetPlaceOrderEnabled implements HostPage; the enabled state is part of
// the status document the host polls.
func (s *Session) SetPlaceOrderEnabled(bool) {}

// SetWarningVisible implements HostPage.
func (s *Session) SetWarningVisible(bool) {}

// SetPanelVisible implements HostPage.
func (s *Session) SetPanelVisible(bool) {}

// Render implements HostPage: the session records the projection and the
// web layer serves it. A storefront embedding the core directly can supply
// its own HostPage instead.
func (s *Session) Render(st UIStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// onChange runs after every flow transition: re-evaluate the gate, render,
// and persist a snapshot so another instance can rehydrate the session.
func (s *Session) onChange() {
	s.Gate.Reevaluate()
	s.persist()
}

func (s *Session) persist() {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap := &repository.SessionSnapshot{
		OTP:       s.OTP.State(),
		Token:     s.Token.State(),
		Confirmed: s.Token.Confirmed(),
		Markers:   s.Markers(),
	}
	phone := s.OTP.Phone()
	snap.CountryCode = string(phone.CountryCode)
	if phone.LocalNumber != "" && s.enc != nil {
		enc, err := s.enc.Encrypt(phone.LocalNumber)
		if err != nil {
			s.log.Error().Err(err).Str("session_id", s.ID).Msg("encrypt phone for snapshot")
		} else {
			snap.EncryptedPhone = enc
		}
	}
	if err := s.repo.Set(ctx, s.ID, snap); err != nil {
		s.log.Error().Err(err).Str("session_id", s.ID).Msg("persist session snapshot")
	}
}

// ManagerDeps are the collaborators every session is wired with.
type ManagerDeps struct {
	Requirements model.VerificationRequirements
	OTPServer    OTPServer
	OrderServer  OrderServer
	Verifier     PaymentVerifier
	Sessions     repository.SessionRepository
	Encryptor    Encryptor
	Logger       *zerolog.Logger
}

// Manager creates and resolves verification sessions. Live sessions are
// held in memory (they own running timers); snapshots in the session
// repository let a restarted or sibling instance rehydrate flow state.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     ManagerDeps
}

// NewManager constructs an empty manager.
func NewManager(deps ManagerDeps) *Manager {
	return &Manager{sessions: make(map[string]*Session), deps: deps}
}

// Create starts a fresh verification session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := m.build(uuid.NewString())
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	s.onChange()
	return s, nil
}

// Get resolves a session by id, rehydrating from a snapshot when the live
// instance is gone. Unknown ids return domain.ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	if m.deps.Sessions == nil {
		return nil, domain.ErrNotFound
	}
	snap, err := m.deps.Sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s := m.build(id)
	phone := model.PhoneCandidate{CountryCode: model.CountryCode(snap.CountryCode)}
	if snap.EncryptedPhone != "" && m.deps.Encryptor != nil {
		if local, err := m.deps.Encryptor.Decrypt(snap.EncryptedPhone); err == nil {
			phone.LocalNumber = local
		}
	}
	s.OTP.restore(snap.OTP, phone)
	s.Token.restore(snap.Token, snap.Confirmed)
	s.mu.Lock()
	s.markers = snap.Markers
	s.mu.Unlock()
	s.Gate.Reevaluate()

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// Drop tears a session down: flows reset, timers cancelled, snapshot
// cleared.
func (m *Manager) Drop(ctx context.Context, id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.OTP.ResetForm()
		s.Token.Reset()
	}
	if m.deps.Sessions != nil {
		_ = m.deps.Sessions.Clear(ctx, id)
	}
}

func (m *Manager) build(id string) *Session {
	log := m.deps.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	s := &Session{
		ID:   id,
		repo: m.deps.Sessions,
		enc:  m.deps.Encryptor,
		log:  log,
	}
	s.OTP = NewOTPFlow(m.deps.Requirements, m.deps.OTPServer, s, s.onChange)
	s.Token = NewTokenFlow(m.deps.Requirements, id, m.deps.OrderServer, m.deps.Verifier, s, s.onChange)
	s.Gate = NewGate(m.deps.Requirements, s.OTP, s.Token, s)
	return s
}
