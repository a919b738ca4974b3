// Package bus is the broadcast publish/subscribe fabric carrying typed
// system events between the core components.
package bus

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gzhole/llmgate/internal/model"
)

// ErrNoSubscribers is returned by Publish when no receiver is live,
// signaling a misconfigured topology rather than silently dropping.
var ErrNoSubscribers = errors.New("no subscribers on bus")

// DefaultBufferSize bounds each subscriber's inbound buffer.
const DefaultBufferSize = 64

// Subscription is one receiver's view of the bus. Messages published
// before subscription are never observed. A subscriber that falls
// behind loses its oldest buffered messages first.
type Subscription struct {
	ch     chan model.Message
	cancel func()
	once   sync.Once
}

// C returns the receive channel.
func (s *Subscription) C() <-chan model.Message { return s.ch }

// Cancel detaches the subscription from the bus and closes its channel.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Bus fans out every published message to all current subscribers.
// Publishing never blocks on a slow subscriber: when a buffer is full
// the oldest message is dropped to make room.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]*Subscription
	nextID  int
	bufSize int

	log *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithBufferSize overrides the per-subscriber buffer bound.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufSize = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// New creates a bus with no subscribers.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:    make(map[int]*Subscription),
		bufSize: DefaultBufferSize,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe attaches a new receiver observing all messages published
// from now on.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	sub := &Subscription{ch: make(chan model.Message, b.bufSize)}
	sub.cancel = func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(sub.ch)
	}
	b.subs[id] = sub
	return sub
}

// Publish delivers msg to every current subscriber. It fails only when
// there are zero subscribers.
func (b *Bus) Publish(msg model.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.subs) == 0 {
		return ErrNoSubscribers
	}

	for _, sub := range b.subs {
		b.deliver(sub, msg)
	}
	return nil
}

// deliver enqueues without blocking, evicting the oldest buffered
// message when the subscriber's channel is full.
func (b *Bus) deliver(sub *Subscription, msg model.Message) {
	for {
		select {
		case sub.ch <- msg:
			return
		default:
		}
		select {
		case dropped := <-sub.ch:
			b.log.Debug("bus: dropping oldest message for slow subscriber",
				"dropped_type", dropped.Type)
		default:
		}
	}
}

// SubscriberCount reports the number of live receivers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
