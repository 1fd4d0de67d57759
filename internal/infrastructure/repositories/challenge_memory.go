package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/you/rakshasetu/domain"
)

// MemoryChallengeStore implements domain.ChallengeStore in process memory.
// sync.Map gives per-key atomic Store and LoadAndDelete, so identities never
// contend with each other. Expired entries are kept for the retention window
// so a late code still reports ErrChallengeExpired, matching the Redis store.
type MemoryChallengeStore struct {
	m         sync.Map // identity -> *domain.Challenge
	retention time.Duration
	now       func() time.Time
}

// NewMemoryChallengeStore returns an empty in-memory challenge store
func NewMemoryChallengeStore(retention time.Duration) *MemoryChallengeStore {
	return &MemoryChallengeStore{retention: retention, now: time.Now}
}

// WithClock replaces the time source used by DeleteExpired
func (s *MemoryChallengeStore) WithClock(now func() time.Time) *MemoryChallengeStore {
	s.now = now
	return s
}

// Put implements domain.ChallengeStore
func (s *MemoryChallengeStore) Put(ctx context.Context, ch *domain.Challenge) error {
	stored := *ch
	s.m.Store(ch.Identity, &stored)
	return nil
}

// Take implements domain.ChallengeStore
func (s *MemoryChallengeStore) Take(ctx context.Context, identity string) (*domain.Challenge, error) {
	v, ok := s.m.LoadAndDelete(identity)
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	ch := *v.(*domain.Challenge)
	return &ch, nil
}

// DeleteExpired implements domain.ChallengeStore. It evicts entries whose
// expiry plus retention has passed. An entry replaced between Range and
// CompareAndDelete survives, so a fresh reissue is never swept.
func (s *MemoryChallengeStore) DeleteExpired(ctx context.Context) error {
	now := s.now().Add(-s.retention)
	s.m.Range(func(key, value any) bool {
		if err := ctx.Err(); err != nil {
			return false
		}
		if value.(*domain.Challenge).Expired(now) {
			s.m.CompareAndDelete(key, value)
		}
		return true
	})
	return ctx.Err()
}

// Len returns the number of stored challenges, live or not
func (s *MemoryChallengeStore) Len() int {
	n := 0
	s.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

var _ domain.ChallengeStore = (*MemoryChallengeStore)(nil)
