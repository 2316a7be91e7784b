package session

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store for tests and single-node dev,
// mirroring RedisStore semantics.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	subs     map[string]map[int]chan string
	nextSub  int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		subs:     make(map[string]map[int]chan string),
	}
}

// Put overwrites the identity's current session.
func (s *MemoryStore) Put(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.IdentityID] = sess
	return nil
}

// Get returns the current session.
func (s *MemoryStore) Get(_ context.Context, identityID string) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[identityID]
	return sess, ok, nil
}

// CompareAndDelete removes the session only on a token match.
func (s *MemoryStore) CompareAndDelete(_ context.Context, identityID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[identityID]
	if !ok || sess.Token != token {
		return false, nil
	}
	delete(s.sessions, identityID)
	return true, nil
}

// Subscribe registers a buffered subscriber channel for the identity.
func (s *MemoryStore) Subscribe(_ context.Context, identityID string) (<-chan string, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan string, 8)
	if s.subs[identityID] == nil {
		s.subs[identityID] = make(map[int]chan string)
	}
	s.subs[identityID][id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[identityID][id]; ok {
			delete(s.subs[identityID], id)
			close(sub)
		}
	}
	return ch, cancel, nil
}

// Publish fans the token out to subscribers; slow subscribers drop events,
// matching redis pub/sub best-effort delivery.
func (s *MemoryStore) Publish(_ context.Context, identityID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[identityID] {
		select {
		case ch <- token:
		default:
		}
	}
	return nil
}
