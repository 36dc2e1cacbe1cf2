package pubsub

import (
	"context"
	"sync"
)

// HandlerFunc receives every payload published to a room
type HandlerFunc func(room int64, payload []byte)

// Broker fans room payloads out to every subscribed server instance
type Broker interface {
	Publish(ctx context.Context, room int64, payload []byte) error
	// Subscribe registers fn for all rooms. It returns once the
	// subscription is active.
	Subscribe(ctx context.Context, fn HandlerFunc) error
	Close() error
}

// LocalBroker delivers publications synchronously inside the process
type LocalBroker struct {
	mu       sync.RWMutex
	handlers []HandlerFunc
	closed   bool
}

// NewLocalBroker creates an in-process broker
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

// Publish calls every handler with the payload
func (b *LocalBroker) Publish(_ context.Context, room int64, payload []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]HandlerFunc, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(room, payload)
	}
	return nil
}

// Subscribe adds fn to the handler list
func (b *LocalBroker) Subscribe(_ context.Context, fn HandlerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.handlers = append(b.handlers, fn)
	return nil
}

// Close drops all handlers
func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = nil
	return nil
}
