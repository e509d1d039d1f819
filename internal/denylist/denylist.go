package denylist

import (
	"context"
	"sync"
	"time"
)

// Denylist records token identifiers that were revoked before their
// natural expiry. Every authenticated request checks it.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Memory is a process-local denylist guarded by a mutex. Entries are kept
// only until the underlying token would have expired anyway, so the set
// cannot grow without bound.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	// A token revoked at the edge of its lifetime still gets a short
	// window on the list, same floor as the redis implementation.
	if ttl <= 0 {
		ttl = time.Minute
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[jti] = m.now().Add(ttl)
	m.sweepLocked()
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(expiresAt) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// sweepLocked drops entries for tokens that have already expired.
// Caller must hold the mutex.
func (m *Memory) sweepLocked() {
	now := m.now()
	for jti, expiresAt := range m.entries {
		if now.After(expiresAt) {
			delete(m.entries, jti)
		}
	}
}
