package sms

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"cod-verifier/internal/domain/ports/adapter"
)

var _ adapter.SMSProvider = (*CaptureProvider)(nil)

// CaptureProvider records dispatches instead of delivering them. Used in
// dev setups and tests; pairs with test mode where the code is surfaced to
// the caller anyway.
type CaptureProvider struct {
	mu   sync.Mutex
	sent []CapturedMessage
	log  zerolog.Logger
}

type CapturedMessage struct {
	Phone string
	Code  string
}

func NewCaptureProvider(log zerolog.Logger) *CaptureProvider {
	return &CaptureProvider{log: log.With().Str("component", "sms_capture").Logger()}
}

func (p *CaptureProvider) Name() string { return "capture" }

func (p *CaptureProvider) SendCode(ctx context.Context, phone, code string) error {
	p.mu.Lock()
	p.sent = append(p.sent, CapturedMessage{Phone: phone, Code: code})
	p.mu.Unlock()
	p.log.Info().Str("phone", phone).Msg("otp captured instead of dispatched")
	return nil
}

// Sent returns a copy of everything captured so far.
func (p *CaptureProvider) Sent() []CapturedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CapturedMessage, len(p.sent))
	copy(out, p.sent)
	return out
}
