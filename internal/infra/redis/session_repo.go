package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps verification session snapshots in Redis so a restarted
// or sibling instance can rehydrate a shopper's flow state.
type SessionRepo struct {
	client *redClient
	ttl    time.Duration
}

func NewSessionRepo(client *redClient, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute // one checkout's worth of lifetime
	}
	return &SessionRepo{client: client, ttl: ttl}
}

func sessionKey(id string) string { return "verify_session:" + id }

func (s *SessionRepo) Set(ctx context.Context, sessionID string, snap *repository.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sessionID), data, s.ttl)
}

func (s *SessionRepo) Get(ctx context.Context, sessionID string) (*repository.SessionSnapshot, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID))
	if err == goredis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap repository.SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *SessionRepo) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID))
}
