package eventbus

import "sync"

// Event is any value published on the bus. The scheduler publishes the
// types declared in core/events.
type Event interface{}

// EventBus is a minimal publish/subscribe fan-out used to decouple the
// generation loop from log and metric consumers.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Close()
}

const subscriberBuffer = 16

// Bus fans events out to channel subscribers. Publishing never blocks: a
// subscriber that falls behind loses events rather than stalling a
// generation run.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

// New creates an empty Bus.
func New() *Bus { return &Bus{} }

// Publish delivers the event to every subscriber, dropping it for any
// subscriber with a full buffer.
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

// Subscribe returns a channel receiving all future events. The channel is
// closed when the bus closes.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Close closes every subscriber channel. Further publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
