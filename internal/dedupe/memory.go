package dedupe

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default single-process backend: a mutex-guarded map of
// id -> last-seen time. Entries older than the TTL are pruned on every write,
// so the map stays bounded without a background timer. State does not survive
// restarts and is not shared across instances.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		seen: make(map[string]time.Time),
	}
}

func (s *MemoryStore) HasSeen(ctx context.Context, id string) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.seen[id]
	if !ok {
		return false, nil
	}
	return s.now().Sub(at) < s.ttl, nil
}

// MarkSeen records id at the current time, refreshing the window for a
// repeated id, and prunes expired entries while it holds the lock.
func (s *MemoryStore) MarkSeen(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.seen[id] = now
	for key, at := range s.seen {
		if now.Sub(at) >= s.ttl {
			delete(s.seen, key)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
