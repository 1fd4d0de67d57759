package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/rakshasetu/domain"
)

// RedisChallengeStore implements domain.ChallengeStore on Redis. Keys carry a
// native TTL of the challenge lifetime plus a retention window so that a late
// verification can still be told apart as expired rather than missing.
type RedisChallengeStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewRedisChallengeStore creates a Redis backed challenge store
func NewRedisChallengeStore(client *redis.Client, retention time.Duration) *RedisChallengeStore {
	return &RedisChallengeStore{
		client:    client,
		prefix:    "otp:",
		retention: retention,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to compute key TTLs
func (r *RedisChallengeStore) WithClock(now func() time.Time) *RedisChallengeStore {
	r.now = now
	return r
}

func (r *RedisChallengeStore) key(identity string) string {
	return r.prefix + identity
}

// Put implements domain.ChallengeStore. SET overwrites, which supersedes any
// earlier challenge for the identity.
func (r *RedisChallengeStore) Put(ctx context.Context, ch *domain.Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	ttl := ch.ExpiresAt.Sub(r.now()) + r.retention
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := r.client.Set(ctx, r.key(ch.Identity), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge in Redis: %w", err)
	}
	return nil
}

// Take implements domain.ChallengeStore using GETDEL, a single atomic command.
func (r *RedisChallengeStore) Take(ctx context.Context, identity string) (*domain.Challenge, error) {
	data, err := r.client.GetDel(ctx, r.key(identity)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to take challenge from Redis: %w", err)
	}

	var ch domain.Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &ch, nil
}

// DeleteExpired implements domain.ChallengeStore
func (r *RedisChallengeStore) DeleteExpired(ctx context.Context) error {
	// Redis handles TTL automatically, so this is a no-op
	return nil
}

var _ domain.ChallengeStore = (*RedisChallengeStore)(nil)
