package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by a broker after Close
var ErrClosed = errors.New("broker closed")

// envelope is the wire format of one room publication
type envelope struct {
	Room    int64           `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBroker shares room publications between instances over one Redis
// pub/sub channel
type RedisBroker struct {
	client  *redis.Client
	channel string

	mu     sync.Mutex
	subs   []*redis.PubSub
	wg     sync.WaitGroup
	closed bool
}

// NewRedisBroker connects to Redis and verifies the connection
func NewRedisBroker(ctx context.Context, addr, password string, db int, channel string) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisBroker{client: client, channel: channel}, nil
}

// Publish sends the payload for room to every subscribed instance
func (b *RedisBroker) Publish(ctx context.Context, room int64, payload []byte) error {
	data, err := json.Marshal(envelope{Room: room, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Subscribe starts a receive loop that calls fn for every publication
func (b *RedisBroker) Subscribe(ctx context.Context, fn HandlerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.subs = append(b.subs, sub)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range sub.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("Dropping malformed room publication")
				continue
			}
			fn(env.Room, env.Payload)
		}
	}()
	return nil
}

// Close stops all receive loops and closes the client
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis subscription")
		}
	}
	b.wg.Wait()
	return b.client.Close()
}
