package repository

import (
	"context"
	"time"
)

// IssuedCode is a passcode held for a phone number until it expires or is
// consumed.
type IssuedCode struct {
	Code     string
	Attempts int
}

// OTPCodeRepository is the port for short-lived passcode storage. Entries
// expire on their own; Delete is for consumption on successful verification.
type OTPCodeRepository interface {
	Store(ctx context.Context, phone, code string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (*IssuedCode, error)
	IncrAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error

	// Cooldown gating: SetCooldown arms the resend lockout, CooldownRemaining
	// reports how long is left (zero when resend is permitted again).
	SetCooldown(ctx context.Context, phone string, d time.Duration) error
	CooldownRemaining(ctx context.Context, phone string) (time.Duration, error)
}
