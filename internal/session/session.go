package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrVerifyFailed means the stored session could not be read or written.
	// Callers must treat the identity as untrusted and force a re-login;
	// a stale decision about identity is never assumed safe.
	ErrVerifyFailed = errors.New("session: failed to verify session")

	// ErrTokenMismatch means the presented token is no longer the
	// identity's current one: the account was logged in elsewhere.
	ErrTokenMismatch = errors.New("session: token superseded by a newer login")
)

// Session is the single currently-valid login for an identity.
type Session struct {
	IdentityID string    `json:"identityId"`
	Token      string    `json:"token"`
	IssuedAt   time.Time `json:"issuedAt"`
}

// Invalidation is delivered to a watcher whose token was superseded.
type Invalidation struct {
	IdentityID string
	NewToken   string
}

// Store persists the per-identity session record and carries token-change
// events to watchers. Implementations: RedisStore (production) and
// MemoryStore (tests, single-process dev).
type Store interface {
	// Put overwrites the identity's current session.
	Put(ctx context.Context, s Session) error
	// Get returns the current session; ok=false when none is stored.
	Get(ctx context.Context, identityID string) (Session, bool, error)
	// CompareAndDelete removes the session only if the stored token still
	// equals token. Returns whether a delete happened.
	CompareAndDelete(ctx context.Context, identityID, token string) (bool, error)
	// Subscribe yields the new token each time the identity's session
	// changes. The returned func cancels the subscription.
	Subscribe(ctx context.Context, identityID string) (<-chan string, func(), error)
	// Publish announces a token change to subscribers.
	Publish(ctx context.Context, identityID, token string) error
}

// newToken combines high-resolution time with a secure random source.
// Collisions are negligible; the time prefix keeps tokens sortable in logs.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x-%s", time.Now().UnixNano(), hex.EncodeToString(buf)), nil
}
