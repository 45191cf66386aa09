package event

import "sync"

type subscriber struct {
	id uint64
	fn Handler
}

// Bus delivers edits to subscribers synchronously, in subscription
// order. Panics in handlers are not recovered; a broken consumer is a
// programming error, not a runtime condition to survive.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for every subsequent Publish. The
// returned Subscription removes it again.
func (b *Bus) Subscribe(fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	return Subscription{bus: b, id: id}
}

// Publish delivers the edit to every subscriber on the caller's
// goroutine. Handlers registered or removed during delivery take effect
// from the next Publish.
func (b *Bus) Publish(e Edit) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(e)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Subscription is a handle to an active subscriber.
type Subscription struct {
	bus *Bus
	id  uint64
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.unsubscribe(s.id)
	}
}
