package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/hearthforum/hearth/internal/cache"
	"github.com/hearthforum/hearth/pkg/logging"
)

// Envelope is the wire form of a broadcast event: the event name plus its
// JSON payload. Subscribers decode the payload according to the event name.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Subscriber hands out per-channel event streams. The returned cancel
// function releases the subscription; the channel is closed afterwards.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan Envelope, func(), error)
}

// defaultQueueSize bounds per-subscriber delivery buffers when the caller
// passes no size.
const defaultQueueSize = 16

// RedisBus carries events across process boundaries over Redis pub/sub.
// It implements forum.Publisher on the producing side and Subscriber on the
// consuming side, so every server instance sees every instance's events.
type RedisBus struct {
	cache     *cache.Cache
	queueSize int
	logger    *zap.Logger
}

// NewRedisBus creates a new Redis-backed event bus. queueSize bounds each
// subscriber's delivery buffer; non-positive values fall back to the default.
func NewRedisBus(c *cache.Cache, queueSize int) *RedisBus {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &RedisBus{
		cache:     c,
		queueSize: queueSize,
		logger:    logging.WithComponent("realtime"),
	}
}

// Publish marshals the event into an envelope and broadcasts it.
func (b *RedisBus) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{Event: event, Payload: raw})
	if err != nil {
		return err
	}
	return b.cache.Publish(ctx, channel, data)
}

// Subscribe opens a Redis subscription on a channel and decodes envelopes
// off it until cancelled.
func (b *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan Envelope, func(), error) {
	pubsub, err := b.cache.Subscribe(ctx, channel)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan Envelope, b.queueSize)
	done := make(chan struct{})

	go func() {
		defer close(out)
		messages := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					b.logger.Warn("dropping malformed event",
						zap.String("channel", channel),
						zap.Error(err))
					continue
				}
				select {
				case out <- env:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

// MemoryBus is the single-process bus used when Redis is disabled and in
// tests. Slow subscribers lose events rather than stalling publishers.
type MemoryBus struct {
	mu        sync.RWMutex
	subs      map[string]map[int]chan Envelope
	next      int
	queueSize int
}

// NewMemoryBus creates a new in-process event bus. queueSize bounds each
// subscriber's delivery buffer; non-positive values fall back to the default.
func NewMemoryBus(queueSize int) *MemoryBus {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &MemoryBus{
		subs:      make(map[string]map[int]chan Envelope),
		queueSize: queueSize,
	}
}

// Publish marshals the event and delivers it to current subscribers of the
// channel. Delivery is non-blocking.
func (b *MemoryBus) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := Envelope{Event: event, Payload: raw}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[channel] {
		select {
		case ch <- env:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber on a channel.
func (b *MemoryBus) Subscribe(ctx context.Context, channel string) (<-chan Envelope, func(), error) {
	ch := make(chan Envelope, b.queueSize)

	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]chan Envelope)
	}
	b.subs[channel][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[channel], id)
			if len(b.subs[channel]) == 0 {
				delete(b.subs, channel)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
