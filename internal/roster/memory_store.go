package roster

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRecord struct {
	id   Identity
	hash []byte
}

// MemoryStore is a process-local Store for tests and single-node dev.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

// Create stores a new identity, enforcing username/email uniqueness.
func (s *MemoryStore) Create(_ context.Context, id Identity, passwordHash []byte) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.id.Username == id.Username || rec.id.Email == id.Email {
			return Identity{}, ErrDuplicate
		}
	}
	id.CreatedAt = time.Now().UTC()
	s.records[id.ID] = memoryRecord{id: id, hash: passwordHash}
	return id, nil
}

// FindByLogin matches username or email.
func (s *MemoryStore) FindByLogin(_ context.Context, usernameOrEmail string) (Identity, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.id.Username == usernameOrEmail || rec.id.Email == usernameOrEmail {
			return rec.id, rec.hash, nil
		}
	}
	return Identity{}, nil, ErrNotFound
}

// Get returns one identity by id.
func (s *MemoryStore) Get(_ context.Context, id string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return rec.id, nil
}

// List returns unarchived identities, optionally filtered by role.
func (s *MemoryStore) List(_ context.Context, role Role) ([]Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []Identity
	for _, rec := range s.records {
		if rec.id.Archived {
			continue
		}
		if role != "" && rec.id.Role != role {
			continue
		}
		ids = append(ids, rec.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Username < ids[j].Username })
	return ids, nil
}

// Archive retires an account.
func (s *MemoryStore) Archive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.id.Archived = true
	s.records[id] = rec
	return nil
}

// UpdatePassword replaces the stored hash.
func (s *MemoryStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.hash = passwordHash
	s.records[id] = rec
	return nil
}
