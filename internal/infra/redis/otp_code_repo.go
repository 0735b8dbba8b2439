package redis

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/ports/repository"
)

var _ repository.OTPCodeRepository = (*OTPCodeRepo)(nil)

// OTPCodeRepo stores issued passcodes in Redis. The code value and its
// attempt counter live in separate keys sharing one TTL, so a code expiring
// also resets the counter.
type OTPCodeRepo struct {
	client *redClient
}

func NewOTPCodeRepo(client *redClient) *OTPCodeRepo {
	return &OTPCodeRepo{client: client}
}

func codeKey(phone string) string     { return "otp_code:" + phone }
func attemptKey(phone string) string  { return "otp_attempts:" + phone }
func cooldownKey(phone string) string { return "otp_cooldown:" + phone }

func (r *OTPCodeRepo) Store(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := r.client.Set(ctx, codeKey(phone), code, ttl); err != nil {
		return err
	}
	// a fresh code starts with a clean attempt counter
	return r.client.Del(ctx, attemptKey(phone))
}

func (r *OTPCodeRepo) Get(ctx context.Context, phone string) (*repository.IssuedCode, error) {
	code, err := r.client.Get(ctx, codeKey(phone))
	if err == goredis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	issued := &repository.IssuedCode{Code: code}
	attempts, err := r.client.Get(ctx, attemptKey(phone))
	if err != nil && err != goredis.Nil {
		return nil, err
	}
	if err == nil {
		if n, convErr := strconv.Atoi(attempts); convErr == nil {
			issued.Attempts = n
		}
	}
	return issued, nil
}

func (r *OTPCodeRepo) IncrAttempts(ctx context.Context, phone string) (int, error) {
	n, err := r.client.Incr(ctx, attemptKey(phone))
	if err != nil {
		return 0, err
	}
	if n == 1 {
		// align the counter's lifetime with the code's
		if ttl, terr := r.client.TTL(ctx, codeKey(phone)); terr == nil && ttl > 0 {
			_ = r.client.Expire(ctx, attemptKey(phone), ttl)
		}
	}
	return int(n), nil
}

func (r *OTPCodeRepo) Delete(ctx context.Context, phone string) error {
	return r.client.Del(ctx, codeKey(phone), attemptKey(phone))
}

func (r *OTPCodeRepo) SetCooldown(ctx context.Context, phone string, d time.Duration) error {
	return r.client.Set(ctx, cooldownKey(phone), "1", d)
}

func (r *OTPCodeRepo) CooldownRemaining(ctx context.Context, phone string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, cooldownKey(phone))
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		// -1 no expiry, -2 no key; either way no active cooldown
		return 0, nil
	}
	return ttl, nil
}
