// Package notify carries rendered notifications from the worker back to
// whichever API instance holds the target's websocket connection.
package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const channel = "eduonline:notify"

// Notification is the payload shape pushed to clients; the background
// worker contract expects {notification: {title, body}}.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// Message targets a set of identities, or everyone when Broadcast is set.
type Message struct {
	IdentityIDs  []string     `json:"identityIds,omitempty"`
	Broadcast    bool         `json:"broadcast,omitempty"`
	Notification Notification `json:"notification"`
}

// Bus moves messages between processes.
type Bus interface {
	Publish(ctx context.Context, msg Message) error
	// Listen invokes fn for every message until ctx is cancelled.
	Listen(ctx context.Context, fn func(Message)) error
}

// RedisBus implements Bus over redis pub/sub.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus creates a bus over an existing client.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

// Publish sends one message.
func (b *RedisBus) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, data).Err()
}

// Listen blocks delivering messages until ctx is cancelled.
func (b *RedisBus) Listen(ctx context.Context, fn func(Message)) error {
	sub := b.client.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				continue
			}
			fn(msg)
		}
	}
}
