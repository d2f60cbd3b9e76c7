package events

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultQueueSize is the per-subscriber queue capacity.
const DefaultQueueSize = 200

// Subscriber is one live event-feed connection. Events arrive on C until
// the subscriber is dropped or unsubscribed, at which point C is closed.
type Subscriber struct {
	ID string

	ch chan Event
}

// C returns the subscriber's event channel.
func (s *Subscriber) C() <-chan Event {
	return s.ch
}

// Broadcaster fans events out to every connected subscriber. Each
// subscriber owns an independent bounded queue; a subscriber whose queue
// is full is dropped so that it can never stall delivery to the others.
type Broadcaster struct {
	queueSize int

	mu   sync.Mutex
	subs map[string]*Subscriber
}

// NewBroadcaster creates a broadcaster. queueSize <= 0 selects the default.
func NewBroadcaster(queueSize int) *Broadcaster {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Broadcaster{
		queueSize: queueSize,
		subs:      make(map[string]*Subscriber),
	}
}

// Subscribe registers a new subscriber.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID: uuid.NewString(),
		ch: make(chan Event, b.queueSize),
	}
	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()
	return sub
}

// Unsubscribe deregisters sub and closes its channel. Safe to call for an
// already-dropped subscriber.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.ID]; ok {
		delete(b.subs, sub.ID)
		close(sub.ch)
	}
}

// Broadcast delivers ev to every subscriber without blocking. A subscriber
// with a full queue is removed and its channel closed.
func (b *Broadcaster) Broadcast(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			delete(b.subs, id)
			close(sub.ch)
		}
	}
}

// Count reports the current subscriber count.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
