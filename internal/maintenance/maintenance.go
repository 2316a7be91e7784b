// Package maintenance holds the portal-wide maintenance flag. When
// enabled, non-admin writes are refused and clients show a logout
// countdown.
package maintenance

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const key = "system:maintenance"

// CountdownSeconds is how long clients get before forced logout once
// maintenance turns on.
const CountdownSeconds = 5 * 60

// State is the current maintenance flag.
type State struct {
	Enabled   bool      `json:"enabled"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Flag reads and writes the singleton state in Redis.
type Flag struct {
	client *redis.Client
}

// NewFlag creates a flag over an existing client.
func NewFlag(client *redis.Client) *Flag {
	return &Flag{client: client}
}

// Get returns the current state; absent key means maintenance off.
func (f *Flag) Get(ctx context.Context) (State, error) {
	vals, err := f.client.HGetAll(ctx, key).Result()
	if err != nil {
		return State{}, err
	}
	if len(vals) == 0 {
		return State{}, nil
	}
	var st State
	st.Enabled, _ = strconv.ParseBool(vals["enabled"])
	st.Message = vals["message"]
	if ts, err := time.Parse(time.RFC3339, vals["updated_at"]); err == nil {
		st.UpdatedAt = ts
	}
	return st, nil
}

// Set overwrites the state.
func (f *Flag) Set(ctx context.Context, enabled bool, message string) (State, error) {
	st := State{Enabled: enabled, Message: message, UpdatedAt: time.Now().UTC()}
	err := f.client.HSet(ctx, key,
		"enabled", strconv.FormatBool(st.Enabled),
		"message", st.Message,
		"updated_at", st.UpdatedAt.Format(time.RFC3339),
	).Err()
	return st, err
}
