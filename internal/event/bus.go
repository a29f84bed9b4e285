package event

import (
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 100

// InMemoryBus is the process-wide notification hub. It owns only the
// ephemeral set of live subscriber channels; nothing here is persisted.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

func NewBus() *InMemoryBus {
	return &InMemoryBus{
		subscribers: make(map[string]chan Event),
	}
}

// Publish delivers e to every current subscriber in registration-safe
// fashion. Each subscriber channel preserves publish order; a slow
// subscriber whose buffer is full misses the event rather than
// blocking the publisher or the other subscribers.
func (b *InMemoryBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a listener and returns its channel plus an
// unsubscribe func. Unsubscribing is idempotent and safe to call
// concurrently with Publish.
func (b *InMemoryBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, exists := b.subscribers[id]; exists {
			close(ch)
			delete(b.subscribers, id)
		}
	}

	return ch, unsubscribe
}
