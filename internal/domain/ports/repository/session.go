package repository

import (
	"context"

	"cod-verifier/internal/domain/model"
)

// SessionSnapshot is the durable part of a verification session: enough to
// rehydrate the flows after a restart or on another instance. The phone
// number is stored encrypted (PII).
type SessionSnapshot struct {
	OTP            model.OTPState          `json:"otp"`
	Token          model.TokenPaymentState `json:"token"`
	Confirmed      bool                    `json:"confirmed"`
	Markers        model.Markers           `json:"markers"`
	CountryCode    string                  `json:"country_code,omitempty"`
	EncryptedPhone string                  `json:"phone,omitempty"`
}

// SessionRepository is the port for verification session snapshots.
type SessionRepository interface {
	Set(ctx context.Context, sessionID string, snap *SessionSnapshot) error
	Get(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	Clear(ctx context.Context, sessionID string) error
}
