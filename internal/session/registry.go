package session

import (
	"context"
	"log"
	"time"

	"eduonline/internal/metrics"
)

// Registry guarantees that only the most recently authenticated client for
// a given identity remains trusted. Concurrency is last-write-wins: two
// racing logins both mint tokens, the later write lands, and the loser is
// invalidated on its next observed update.
type Registry struct {
	store Store
}

// NewRegistry creates a registry over the given store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Issue mints a fresh token for the identity and persists it as the
// identity's current session, displacing any previous one. The token is
// returned to the caller for local storage.
func (r *Registry) Issue(ctx context.Context, identityID string) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, ErrVerifyFailed
	}

	_, had, err := r.store.Get(ctx, identityID)
	if err != nil {
		return Session{}, ErrVerifyFailed
	}

	s := Session{IdentityID: identityID, Token: token, IssuedAt: time.Now().UTC()}
	if err := r.store.Put(ctx, s); err != nil {
		return Session{}, ErrVerifyFailed
	}
	if err := r.store.Publish(ctx, identityID, token); err != nil {
		// Watchers also compare on read, so a lost publish only delays
		// invalidation until the next Validate call.
		log.Printf("session: publish for %s failed: %v", identityID, err)
	}
	if had {
		metrics.SessionsInvalidated.Inc()
	}
	return s, nil
}

// Watch subscribes to the identity's stored token and delivers exactly one
// Invalidation when the stored token no longer matches localToken, then
// stops. The returned cancel func must be called on teardown; it is safe
// to call after delivery.
func (r *Registry) Watch(ctx context.Context, identityID, localToken string) (<-chan Invalidation, func(), error) {
	events, unsubscribe, err := r.store.Subscribe(ctx, identityID)
	if err != nil {
		return nil, nil, ErrVerifyFailed
	}

	out := make(chan Invalidation, 1)
	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer unsubscribe()
		defer close(out)

		// The session may already have been displaced between login and
		// subscribe; check the stored token once before trusting events.
		if s, ok, err := r.store.Get(watchCtx, identityID); err == nil && ok && s.Token != localToken {
			out <- Invalidation{IdentityID: identityID, NewToken: s.Token}
			return
		}

		for {
			select {
			case <-watchCtx.Done():
				return
			case token, ok := <-events:
				if !ok {
					return
				}
				if watchCtx.Err() != nil {
					return
				}
				if token != localToken {
					out <- Invalidation{IdentityID: identityID, NewToken: token}
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

// Validate confirms the token is still the identity's current one.
// Transient store failures surface as ErrVerifyFailed and force a
// re-login; there is no silent retry.
func (r *Registry) Validate(ctx context.Context, identityID, token string) error {
	s, ok, err := r.store.Get(ctx, identityID)
	if err != nil {
		return ErrVerifyFailed
	}
	if !ok || s.Token != token {
		return ErrTokenMismatch
	}
	return nil
}

// Clear deletes the stored session only if it still equals localToken, so
// a stale logout never clobbers a newer session.
func (r *Registry) Clear(ctx context.Context, identityID, localToken string) error {
	deleted, err := r.store.CompareAndDelete(ctx, identityID, localToken)
	if err != nil {
		return ErrVerifyFailed
	}
	if deleted {
		if err := r.store.Publish(ctx, identityID, ""); err != nil {
			log.Printf("session: publish clear for %s failed: %v", identityID, err)
		}
	}
	return nil
}
