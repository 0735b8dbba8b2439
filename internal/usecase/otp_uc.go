// File: internal/usecase/otp_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/domain/ports/adapter"
	"cod-verifier/internal/domain/ports/repository"
)

// Compile-time check
var _ OTPUseCase = (*otpUC)(nil)

// RateLimiter gates how often a key may perform an action inside a window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// OTPConfig are the issuance rules for one-time passcodes.
type OTPConfig struct {
	// CodeTTL is how long an issued code stays verifiable.
	CodeTTL time.Duration
	// ResendCooldown is the lockout between consecutive sends to one number.
	ResendCooldown time.Duration
	// MaxAttempts bounds wrong-code submissions per issued code.
	MaxAttempts int
	// SendLimit / SendWindow bound total sends per number.
	SendLimit  int
	SendWindow time.Duration
	// TestMode surfaces the code to the caller instead of dispatching SMS.
	TestMode bool
}

// SendResult is the outcome of a successful send.
type SendResult struct {
	// ResendIn is the seconds before another send is permitted.
	ResendIn int
	// TestCode carries the issued code in test mode, empty otherwise.
	TestCode string
}

type OTPUseCase interface {
	// SendCode issues a fresh passcode for the phone and dispatches it.
	SendCode(ctx context.Context, phone model.PhoneCandidate) (*SendResult, error)
	// VerifyCode consumes the issued passcode. Wrong codes are bounded by
	// MaxAttempts; exceeding it invalidates the code entirely.
	VerifyCode(ctx context.Context, phone model.PhoneCandidate, code string) error
}

type otpUC struct {
	cfg     OTPConfig
	regions []model.Region
	codes   repository.OTPCodeRepository
	sms     adapter.SMSProvider
	limiter RateLimiter
	log     zerolog.Logger
}

func NewOTPUseCase(cfg OTPConfig, regions []model.Region, codes repository.OTPCodeRepository, sms adapter.SMSProvider, limiter RateLimiter, log zerolog.Logger) *otpUC {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 5 * time.Minute
	}
	if cfg.ResendCooldown <= 0 {
		cfg.ResendCooldown = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.SendLimit <= 0 {
		cfg.SendLimit = 5
	}
	if cfg.SendWindow <= 0 {
		cfg.SendWindow = time.Hour
	}
	return &otpUC{cfg: cfg, regions: regions, codes: codes, sms: sms, limiter: limiter, log: log.With().Str("component", "otp_uc").Logger()}
}

func (u *otpUC) SendCode(ctx context.Context, phone model.PhoneCandidate) (*SendResult, error) {
	if !phone.Valid() {
		return nil, domain.ErrInvalidPhone
	}
	if !phone.AllowedIn(u.regions) {
		return nil, domain.ErrRegionNotAllowed
	}
	e164 := phone.E164()

	if remaining, err := u.codes.CooldownRemaining(ctx, e164); err != nil {
		return nil, err
	} else if remaining > 0 {
		return nil, domain.ErrCooldownActive
	}

	if u.limiter != nil {
		ok, err := u.limiter.Allow(ctx, SendCodeKey(e164), u.cfg.SendLimit, u.cfg.SendWindow)
		if err != nil {
			return nil, err
		}
		if !ok {
			u.log.Warn().Str("phone", e164).Msg("otp send rate limited")
			return nil, domain.ErrRateLimited
		}
	}

	code, err := generateCode(model.OTPCodeLength)
	if err != nil {
		return nil, err
	}
	if err := u.codes.Store(ctx, e164, code, u.cfg.CodeTTL); err != nil {
		return nil, err
	}
	if err := u.codes.SetCooldown(ctx, e164, u.cfg.ResendCooldown); err != nil {
		return nil, err
	}

	res := &SendResult{ResendIn: int(u.cfg.ResendCooldown / time.Second)}
	if u.cfg.TestMode {
		res.TestCode = code
		u.log.Debug().Str("phone", e164).Msg("test mode, code surfaced to caller")
		return res, nil
	}

	if err := u.sms.SendCode(ctx, e164, code); err != nil {
		// keep the cooldown; a failing provider is no reason to allow hammering
		u.log.Error().Err(err).Str("phone", e164).Str("provider", u.sms.Name()).Msg("sms dispatch failed")
		return nil, fmt.Errorf("dispatch otp: %w", err)
	}
	return res, nil
}

func (u *otpUC) VerifyCode(ctx context.Context, phone model.PhoneCandidate, code string) error {
	if len(code) != model.OTPCodeLength {
		return domain.ErrInvalidArgument
	}
	e164 := phone.E164()

	issued, err := u.codes.Get(ctx, e164)
	if err != nil {
		if err == domain.ErrNotFound {
			return domain.ErrCodeExpired
		}
		return err
	}

	if subtle.ConstantTimeCompare([]byte(issued.Code), []byte(code)) != 1 {
		attempts, aerr := u.codes.IncrAttempts(ctx, e164)
		if aerr != nil {
			return aerr
		}
		if attempts >= u.cfg.MaxAttempts {
			_ = u.codes.Delete(ctx, e164)
			u.log.Warn().Str("phone", e164).Int("attempts", attempts).Msg("otp attempts exhausted")
			return domain.ErrTooManyAttempts
		}
		return domain.ErrCodeMismatch
	}

	// consume on success; a code never verifies twice
	if err := u.codes.Delete(ctx, e164); err != nil {
		u.log.Error().Err(err).Str("phone", e164).Msg("delete consumed otp")
	}
	return nil
}

// SendCodeKey is the rate-limit bucket for passcode sends to one number.
func SendCodeKey(e164 string) string {
	return "otp_send:" + e164
}

func generateCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
