package queue

import (
	"context"
	"log"
	"sync"
)

// Handler processes one delivered event.  Returning an error leaves
// the event eligible for redelivery, so handlers must be idempotent.
type Handler func(ctx context.Context, topic string, ev Event) error

// Broker combines publishing with per-topic subscription.
type Broker interface {
	Publisher
	Subscribe(topic string, h Handler)
}

// ChannelBroker is an in-process Broker.  It delivers each published
// event to every subscriber of the topic on the publishing
// goroutine.  Handler errors are logged, not returned: like the
// AMQP path, delivery failures never reach the publisher.  Used by
// single-process deployments and tests.
type ChannelBroker struct {
	mu   sync.RWMutex
	subs map[string][]Handler
}

// NewChannelBroker returns an empty in-process broker.
func NewChannelBroker() *ChannelBroker {
	return &ChannelBroker{subs: map[string][]Handler{}}
}

func (b *ChannelBroker) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], h)
}

func (b *ChannelBroker) Publish(ctx context.Context, topic string, ev Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subs[topic]...)
	b.mu.RUnlock()
	for _, h := range handlers {
		if err := h(ctx, topic, ev); err != nil {
			log.Printf("broker: handler for %s failed: %v", topic, err)
		}
	}
	return nil
}
