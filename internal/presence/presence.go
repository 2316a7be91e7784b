package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConnectionRecord is one live client connection for an identity. A record
// expires out of the store when heartbeats stop, which is the backend-side
// auto-removal path for ungraceful disconnects.
type ConnectionRecord struct {
	IdentityID   string    `json:"identityId"`
	ConnectionID string    `json:"connectionId"`
	Device       string    `json:"device"`
	ConnectedAt  time.Time `json:"connectedAt"`
	LastActive   time.Time `json:"lastActive"`
}

// Store persists connection records with expiry.
type Store interface {
	Put(ctx context.Context, rec ConnectionRecord, ttl time.Duration) error
	Touch(ctx context.Context, identityID, connectionID string, lastActive time.Time, ttl time.Duration) error
	Remove(ctx context.Context, identityID, connectionID string) error
	List(ctx context.Context, identityID string) ([]ConnectionRecord, error)
}

// Tracker maintains a best-effort view of which identities have an open
// connection. It is a liveness signal, not a failure detector: a partition
// that heals quickly may show a brief false offline.
type Tracker struct {
	store Store
	ttl   time.Duration
}

// NewTracker creates a tracker whose records expire after ttl without a
// heartbeat.
func NewTracker(store Store, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &Tracker{store: store, ttl: ttl}
}

// Begin registers a new connection for the identity. prevConnectionID, when
// non-empty, is a record this same client owned before reconnecting and is
// removed first so a client never appears twice.
func (t *Tracker) Begin(ctx context.Context, identityID, device, prevConnectionID string) (ConnectionRecord, error) {
	if prevConnectionID != "" {
		if err := t.store.Remove(ctx, identityID, prevConnectionID); err != nil {
			return ConnectionRecord{}, err
		}
	}
	now := time.Now().UTC()
	rec := ConnectionRecord{
		IdentityID:   identityID,
		ConnectionID: uuid.NewString(),
		Device:       device,
		ConnectedAt:  now,
		LastActive:   now,
	}
	if err := t.store.Put(ctx, rec, t.ttl); err != nil {
		return ConnectionRecord{}, err
	}
	return rec, nil
}

// Heartbeat refreshes the record's lastActive and pushes its expiry out,
// distinguishing a slow connection from a dead one.
func (t *Tracker) Heartbeat(ctx context.Context, rec ConnectionRecord) error {
	return t.store.Touch(ctx, rec.IdentityID, rec.ConnectionID, time.Now().UTC(), t.ttl)
}

// End removes the connection record; this is the graceful teardown path.
func (t *Tracker) End(ctx context.Context, rec ConnectionRecord) error {
	return t.store.Remove(ctx, rec.IdentityID, rec.ConnectionID)
}

// Snapshot lists the identity's live connections.
func (t *Tracker) Snapshot(ctx context.Context, identityID string) ([]ConnectionRecord, error) {
	return t.store.List(ctx, identityID)
}

// Online reports whether the identity has at least one live connection.
func (t *Tracker) Online(ctx context.Context, identityID string) (bool, error) {
	recs, err := t.store.List(ctx, identityID)
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

// RunHeartbeat refreshes the record every interval until ctx is cancelled,
// then removes it. Intended to run in its own goroutine per connection;
// the ticker is always stopped on exit.
func (t *Tracker) RunHeartbeat(ctx context.Context, rec ConnectionRecord, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// Best effort: expiry covers us if this remove is lost.
			removeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = t.store.Remove(removeCtx, rec.IdentityID, rec.ConnectionID)
			cancel()
			return
		case <-ticker.C:
			_ = t.Heartbeat(ctx, rec)
		}
	}
}
