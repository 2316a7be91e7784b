package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "session:"
	channelPrefix = "session-events:"
)

// compareAndDeleteScript deletes the session key only when the stored
// token matches. Runs atomically server-side.
var compareAndDeleteScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "token") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps one hash per identity plus a pub/sub channel for
// token-change events.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put overwrites the identity's current session.
func (s *RedisStore) Put(ctx context.Context, sess Session) error {
	return s.client.HSet(ctx, keyPrefix+sess.IdentityID,
		"token", sess.Token,
		"issued_at", sess.IssuedAt.Format(time.RFC3339Nano),
	).Err()
}

// Get returns the current session; ok=false when none is stored.
func (s *RedisStore) Get(ctx context.Context, identityID string) (Session, bool, error) {
	vals, err := s.client.HGetAll(ctx, keyPrefix+identityID).Result()
	if err != nil {
		return Session{}, false, err
	}
	if len(vals) == 0 {
		return Session{}, false, nil
	}
	sess := Session{IdentityID: identityID, Token: vals["token"]}
	if ts, err := time.Parse(time.RFC3339Nano, vals["issued_at"]); err == nil {
		sess.IssuedAt = ts
	}
	return sess, true, nil
}

// CompareAndDelete removes the session only if the stored token matches.
func (s *RedisStore) CompareAndDelete(ctx context.Context, identityID, token string) (bool, error) {
	n, err := compareAndDeleteScript.Run(ctx, s.client, []string{keyPrefix + identityID}, token).Int()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Subscribe yields the new token on every session change for the identity.
func (s *RedisStore) Subscribe(ctx context.Context, identityID string) (<-chan string, func(), error) {
	sub := s.client.Subscribe(ctx, channelPrefix+identityID)
	// Force the subscription onto the wire before the caller relies on it.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}

// Publish announces a token change.
func (s *RedisStore) Publish(ctx context.Context, identityID, token string) error {
	return s.client.Publish(ctx, channelPrefix+identityID, token).Err()
}
