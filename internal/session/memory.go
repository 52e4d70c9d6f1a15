package session

import (
	"context"
	"time"

	"goldloan/internal/cache"
)

// MemoryStore keeps sessions in a bounded in-process LRU with TTL.
type MemoryStore struct {
	items *cache.LRUCache[Session]
}

// NewMemoryStore creates a store holding at most maxEntries sessions, each
// expiring ttl after it was last read or saved.
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: cache.NewLRUCache[Session](maxEntries, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s, ok := m.items.Touch(id)
	if !ok {
		return nil, ErrNotFound
	}
	if s.Customer != nil {
		c := *s.Customer
		s.Customer = &c
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	cp := *s
	if s.Customer != nil {
		c := *s.Customer
		cp.Customer = &c
	}
	m.items.Set(s.ID, cp)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.items.Delete(id)
	return nil
}

// Size returns the number of live sessions.
func (m *MemoryStore) Size() int {
	return m.items.Size()
}

// CleanExpired lets a cache.Manager sweep expired sessions.
func (m *MemoryStore) CleanExpired() int {
	return m.items.CleanExpired()
}
