// File: cmd/demo/memcodes.go
package main

import (
	"context"
	"sync"
	"time"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/ports/repository"
)

// memCodes is a map-backed passcode store for the demo. Expiry is checked
// lazily on read; the demo never runs long enough for sweeping to matter.
type memCodes struct {
	mu        sync.Mutex
	codes     map[string]*repository.IssuedCode
	expiries  map[string]time.Time
	cooldowns map[string]time.Time
}

func newMemCodes() *memCodes {
	return &memCodes{
		codes:     make(map[string]*repository.IssuedCode),
		expiries:  make(map[string]time.Time),
		cooldowns: make(map[string]time.Time),
	}
}

func (m *memCodes) Store(ctx context.Context, phone, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phone] = &repository.IssuedCode{Code: code}
	m.expiries[phone] = time.Now().Add(ttl)
	return nil
}

func (m *memCodes) Get(ctx context.Context, phone string) (*repository.IssuedCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[phone]
	if !ok || time.Now().After(m.expiries[phone]) {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCodes) IncrAttempts(ctx context.Context, phone string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[phone]
	if !ok {
		return 0, domain.ErrNotFound
	}
	c.Attempts++
	return c.Attempts, nil
}

func (m *memCodes) Delete(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, phone)
	delete(m.expiries, phone)
	return nil
}

func (m *memCodes) SetCooldown(ctx context.Context, phone string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cooldowns[phone] = time.Now().Add(d)
	return nil
}

func (m *memCodes) CooldownRemaining(ctx context.Context, phone string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.cooldowns[phone]
	if !ok {
		return 0, nil
	}
	if rem := time.Until(until); rem > 0 {
		return rem, nil
	}
	return 0, nil
}
