// Package eventbus provides the in-process fan-out channel used to observe
// dispatch lifecycle events without coupling packages to each other.
package eventbus

import "sync"

// Event is any value published on the bus; subscribers type-switch on the
// concrete event types from core/events.
type Event any

// EventBus fans events out to all current subscribers.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Position events arrive once per simulation tick, so subscriber channels
// carry a small buffer to absorb slow readers before events are dropped.
const subscriberBuffer = 16

// Bus is the channel-backed EventBus implementation. A slow subscriber never
// blocks a publish; once its buffer is full, events for it are dropped.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
	closed bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Publish delivers e to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its receive channel. The
// channel is closed by Unsubscribe or Close; on a closed bus it is returned
// already closed.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[b.nextID] = ch
	b.nextID++
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		if ch == sub {
			delete(b.subs, id)
			close(ch)
			return
		}
	}
}

// Close closes every subscriber channel and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
