// Package hub implements the bounded, lossy fan-out publish bus that
// decouples the session's ingest loop from an unknown number of live HTTP
// subscribers. It is intentionally lossy: a slow subscriber loses items
// from the head of its own queue rather than backing up the producer.
package hub

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/camwire/camclient/internal/metrics"
)

// SubscriptionStatus reports why Next returned without an item.
type SubscriptionStatus int

const (
	// StatusOK means Item holds a freshly delivered value.
	StatusOK SubscriptionStatus = iota
	// StatusLagged means one or more items were dropped before this
	// subscriber could read them; the subscription itself is unaffected.
	StatusLagged
	// StatusClosed means the hub or the subscription was closed; no more
	// items will ever arrive.
	StatusClosed
)

// Subscription is one live consumer's view of a Hub[T]. Create with
// Hub.Subscribe; the zero value is not usable.
type Subscription[T any] struct {
	ID     uuid.UUID
	out    chan T
	lagged chan struct{}
	closed chan struct{}
	once   sync.Once
}

// Next blocks until an item is available, ctx is done, or the subscription
// is closed, in that priority order: a pending lag signal is reported
// before the next item is delivered.
func (s *Subscription[T]) Next(ctx context.Context) (T, SubscriptionStatus) {
	var zero T
	select {
	case <-s.lagged:
		return zero, StatusLagged
	default:
	}
	select {
	case item, ok := <-s.out:
		if !ok {
			return zero, StatusClosed
		}
		return item, StatusOK
	case <-s.lagged:
		return zero, StatusLagged
	case <-s.closed:
		return zero, StatusClosed
	case <-ctx.Done():
		return zero, StatusClosed
	}
}

// Close unsubscribes; safe to call more than once.
func (s *Subscription[T]) Close() { s.once.Do(func() { close(s.closed) }) }

// Hub is a bounded multi-producer, multi-consumer fan-out for one media
// stream (video or audio), generic over the published item type.
type Hub[T any] struct {
	name string // "video" or "audio"; used only for metric labels

	mu   sync.RWMutex
	subs map[*Subscription[T]]struct{}

	bufSize int
}

// DefaultBufSize is the per-subscriber ring buffer capacity (~40 items),
// matching the observed steady-state fan-out depth for MJPEG frame bursts.
const DefaultBufSize = 40

// New creates a Hub for the named stream with the default buffer size.
func New(name string) *Hub[[]byte] {
	return &Hub[[]byte]{name: name, subs: make(map[*Subscription[[]byte]]struct{}), bufSize: DefaultBufSize}
}

// NewSized creates a Hub with an explicit per-subscriber buffer size.
func NewSized(name string, bufSize int) *Hub[[]byte] {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}
	return &Hub[[]byte]{name: name, subs: make(map[*Subscription[[]byte]]struct{}), bufSize: bufSize}
}

// Subscribe registers a new subscriber and returns its handle. The caller
// must Close it when done (e.g. when the HTTP client disconnects).
func (h *Hub[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{
		ID:     uuid.New(),
		out:    make(chan T, h.bufSize),
		lagged: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	metrics.SetHubSubscribers(h.name, n)
	return sub
}

// Unsubscribe removes sub from the hub; safe to call more than once and
// safe to call even if sub was never added.
func (h *Hub[T]) Unsubscribe(sub *Subscription[T]) {
	h.mu.Lock()
	_, existed := h.subs[sub]
	delete(h.subs, sub)
	n := len(h.subs)
	h.mu.Unlock()
	sub.Close()
	if existed {
		metrics.SetHubSubscribers(h.name, n)
	}
}

// Publish delivers item to every current subscriber, honoring the lossy
// ring-buffer overflow policy: a subscriber whose buffer is full has its
// oldest queued item evicted (and is signaled Lagged) to make room for
// item, so the newest item always reaches every subscriber's buffer. It
// returns how many subscribers the item was queued for.
func (h *Hub[T]) Publish(item T) int {
	h.mu.RLock()
	subs := make([]*Subscription[T], 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	metrics.SetHubFanout(h.name, len(subs))
	delivered := 0
	for _, s := range subs {
		for {
			select {
			case s.out <- item:
				delivered++
			default:
				select {
				case <-s.out:
					metrics.IncHubDrop(h.name)
					select {
					case s.lagged <- struct{}{}:
					default:
					}
				default:
				}
				continue
			}
			break
		}
	}
	return delivered
}

// Count returns the current number of active subscribers.
func (h *Hub[T]) Count() int {
	h.mu.RLock()
	n := len(h.subs)
	h.mu.RUnlock()
	return n
}
