package presence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:"

// RedisStore keeps one hash per connection with a TTL; expiry doubles as
// the ungraceful-disconnect cleanup.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(identityID, connectionID string) string {
	return keyPrefix + identityID + ":" + connectionID
}

// Put writes the record and arms its expiry.
func (s *RedisStore) Put(ctx context.Context, rec ConnectionRecord, ttl time.Duration) error {
	k := key(rec.IdentityID, rec.ConnectionID)
	if err := s.client.HSet(ctx, k,
		"device", rec.Device,
		"connected_at", rec.ConnectedAt.Format(time.RFC3339Nano),
		"last_active", rec.LastActive.Format(time.RFC3339Nano),
	).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, k, ttl).Err()
}

// Touch refreshes last_active and re-arms the expiry.
func (s *RedisStore) Touch(ctx context.Context, identityID, connectionID string, lastActive time.Time, ttl time.Duration) error {
	k := key(identityID, connectionID)
	if err := s.client.HSet(ctx, k, "last_active", lastActive.Format(time.RFC3339Nano)).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, k, ttl).Err()
}

// Remove deletes the record.
func (s *RedisStore) Remove(ctx context.Context, identityID, connectionID string) error {
	return s.client.Del(ctx, key(identityID, connectionID)).Err()
}

// List scans the identity's unexpired connection records.
func (s *RedisStore) List(ctx context.Context, identityID string) ([]ConnectionRecord, error) {
	var recs []ConnectionRecord
	iter := s.client.Scan(ctx, 0, keyPrefix+identityID+":*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		vals, err := s.client.HGetAll(ctx, k).Result()
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			continue // expired between scan and read
		}
		rec := ConnectionRecord{
			IdentityID:   identityID,
			ConnectionID: k[len(keyPrefix+identityID+":"):],
			Device:       vals["device"],
		}
		if ts, err := time.Parse(time.RFC3339Nano, vals["connected_at"]); err == nil {
			rec.ConnectedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, vals["last_active"]); err == nil {
			rec.LastActive = ts
		}
		recs = append(recs, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
