// Package redisad keeps login sessions in Redis: one opaque token per
// session, expiring after the configured TTL.
package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hotel_business/internal/adapters/observability"
	"hotel_business/internal/domain"
)

const keyPrefix = "session:"

type Sessions struct {
	c   *redis.Client
	ttl time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *Sessions {
	return &Sessions{
		c:   redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		ttl: ttl,
	}
}

// NewWithClient wires an existing client (tests use miniredis here).
func NewWithClient(c *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{c: c, ttl: ttl}
}

func (s *Sessions) Create(ctx context.Context, sess domain.Session) (string, error) {
	token := uuid.NewString()
	b, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.c.Set(ctx, keyPrefix+token, b, s.ttl).Err(); err != nil {
		return "", err
	}
	observability.ObserveSession("create")
	return token, nil
}

func (s *Sessions) Get(ctx context.Context, token string) (domain.Session, bool, error) {
	v, err := s.c.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		observability.ObserveSession("miss")
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	var sess domain.Session
	if err := json.Unmarshal(v, &sess); err != nil {
		return domain.Session{}, false, err
	}
	observability.ObserveSession("hit")
	return sess, true, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	observability.ObserveSession("delete")
	return s.c.Del(ctx, keyPrefix+token).Err()
}
