package presence

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	rec       ConnectionRecord
	expiresAt time.Time
}

// MemoryStore is a process-local Store for tests, with the same expiry
// semantics as RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]map[string]memoryEntry // identityID -> connectionID -> entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]map[string]memoryEntry),
		now:     time.Now,
	}
}

// Put writes the record with an expiry.
func (s *MemoryStore) Put(_ context.Context, rec ConnectionRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[rec.IdentityID] == nil {
		s.entries[rec.IdentityID] = make(map[string]memoryEntry)
	}
	s.entries[rec.IdentityID][rec.ConnectionID] = memoryEntry{rec: rec, expiresAt: s.now().Add(ttl)}
	return nil
}

// Touch refreshes last_active and the expiry; a missing or expired record
// is a no-op, as in Redis.
func (s *MemoryStore) Touch(_ context.Context, identityID, connectionID string, lastActive time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := s.entries[identityID]
	entry, ok := conns[connectionID]
	if !ok || s.now().After(entry.expiresAt) {
		return nil
	}
	entry.rec.LastActive = lastActive
	entry.expiresAt = s.now().Add(ttl)
	conns[connectionID] = entry
	return nil
}

// Remove deletes the record.
func (s *MemoryStore) Remove(_ context.Context, identityID, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[identityID], connectionID)
	return nil
}

// List returns the identity's unexpired records.
func (s *MemoryStore) List(_ context.Context, identityID string) ([]ConnectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var recs []ConnectionRecord
	for id, entry := range s.entries[identityID] {
		if s.now().After(entry.expiresAt) {
			delete(s.entries[identityID], id)
			continue
		}
		recs = append(recs, entry.rec)
	}
	return recs, nil
}

// SetClock overrides the time source; tests use it to force expiry.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
