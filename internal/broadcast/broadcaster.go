// Package broadcast implements the event fan-out from the coordinator
// loops to subscribers.
//
// Each subscriber gets its own bounded queue, so a slow or dead
// subscriber can never stall the producers or its peers. On overflow
// the oldest queued event is dropped in favor of the new one — a
// lagging subscriber wants the freshest state, not a faithful replay
// of everything it missed. There is no history: events published
// before a subscriber connects are never delivered to it.
package broadcast

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
)

// Compile-time interface check.
var _ domain.Publisher = (*Broadcaster)(nil)

// DefaultQueueCap is the per-subscriber queue bound.
const DefaultQueueCap = 64

// Option configures the broadcaster.
type Option func(*Broadcaster)

// WithQueueCap sets the per-subscriber queue capacity.
func WithQueueCap(n int) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.queueCap = n
		}
	}
}

// SubscriberStats counts deliveries for one subscriber.
type SubscriberStats struct {
	Delivered uint64
	Dropped   uint64
}

type subscriber struct {
	id        string
	ch        chan domain.Event
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// Broadcaster fans events out to all current subscribers in publish
// order. Safe for concurrent use: Publish may race Subscribe,
// Unsubscribe, and Close.
type Broadcaster struct {
	mu       sync.RWMutex
	subs     map[string]*subscriber
	closed   bool
	queueCap int
	seq      atomic.Uint64
	log      *logger.Logger
}

// New creates an empty broadcaster.
func New(log *logger.Logger, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		subs:     make(map[string]*subscriber),
		queueCap: DefaultQueueCap,
		log:      log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a subscriber and returns its event channel. The
// channel is closed on Unsubscribe or Close. Subscriber ids must be
// unique.
func (b *Broadcaster) Subscribe(id string) (<-chan domain.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, domain.ErrBusClosed
	}
	if _, exists := b.subs[id]; exists {
		return nil, fmt.Errorf("subscribe %q: %w", id, domain.ErrSubscriberExists)
	}

	sub := &subscriber{
		id: id,
		ch: make(chan domain.Event, b.queueCap),
	}
	b.subs[id] = sub
	b.log.Debug("broadcast: subscriber %q joined (queue=%d)", id, b.queueCap)
	return sub.ch, nil
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(b.subs, id)
	close(sub.ch)
	b.log.Debug("broadcast: subscriber %q left (delivered=%d dropped=%d)",
		id, sub.delivered.Load(), sub.dropped.Load())
	return nil
}

// Publish stamps the event with a sequence number and hands it to
// every subscriber queue. Never blocks: a full queue sheds its oldest
// event to make room. Publishing to a closed broadcaster is a no-op.
func (b *Broadcaster) Publish(ev domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	ev.Seq = b.seq.Add(1)

	for _, sub := range b.subs {
		for {
			select {
			case sub.ch <- ev:
				sub.delivered.Add(1)
			default:
				// Queue full: shed the oldest and retry. The inner
				// receive can itself lose the race to the consumer,
				// in which case the retry send succeeds.
				select {
				case <-sub.ch:
					sub.dropped.Add(1)
				default:
				}
				continue
			}
			break
		}
	}
}

// Stats returns the delivery counters for a subscriber.
func (b *Broadcaster) Stats(id string) (SubscriberStats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sub, ok := b.subs[id]
	if !ok {
		return SubscriberStats{}, domain.ErrNotFound
	}
	return SubscriberStats{
		Delivered: sub.delivered.Load(),
		Dropped:   sub.dropped.Load(),
	}, nil
}

// Published returns the total number of events accepted so far.
func (b *Broadcaster) Published() uint64 {
	return b.seq.Load()
}

// Close shuts the broadcaster down and closes every subscriber
// channel. Subsequent Publish calls are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
	b.log.Debug("broadcast: closed after %d events", b.seq.Load())
}
