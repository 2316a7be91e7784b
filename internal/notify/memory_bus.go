package notify

import (
	"context"
	"sync"
)

// MemoryBus is a process-local Bus for tests and single-process dev.
type MemoryBus struct {
	mu   sync.Mutex
	subs []chan Message
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// Publish fans the message to all listeners; slow listeners drop.
func (b *MemoryBus) Publish(_ context.Context, msg Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Listen blocks delivering messages until ctx is cancelled.
func (b *MemoryBus) Listen(ctx context.Context, fn func(Message)) error {
	ch := make(chan Message, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			fn(msg)
		}
	}
}
