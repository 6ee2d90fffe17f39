package realtime

import (
	"log/slog"
	"sync"

	"github.com/statusloops/statusloops/internal/pkg/metrics"
)

// DefaultBufferSize is the per-subscription event buffer used when the
// configured size is zero or negative.
const DefaultBufferSize = 64

// Subscription is one live connection's membership in a page group.
// Events arrive on the channel returned by Events until the
// subscription is removed, which is signalled via Done. The event
// channel itself is never closed: publishes run outside the hub lock,
// so closing it would race with in-flight sends.
type Subscription struct {
	PageID string

	c    chan Event
	done chan struct{}
	once sync.Once
}

// Events returns the channel on which broadcast events arrive.
func (s *Subscription) Events() <-chan Event {
	return s.c
}

// Done is closed when the subscription has been removed from the hub.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) finish() {
	s.once.Do(func() { close(s.done) })
}

// Hub routes events to the subscriptions watching each status page.
// It is safe for concurrent use by any number of publishers and
// subscribers.
type Hub struct {
	mu      sync.RWMutex
	pages   map[string]map[*Subscription]struct{}
	bufSize int
	closed  bool
}

// NewHub creates a new hub with the given per-subscription buffer size.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		pages:   make(map[string]map[*Subscription]struct{}),
		bufSize: bufferSize,
	}
}

// Subscribe adds a new subscription to the given page's group and
// returns it. The caller must call Unsubscribe when done, typically via
// defer in the transport handler.
func (h *Hub) Subscribe(pageID string) *Subscription {
	sub := &Subscription{
		PageID: pageID,
		c:      make(chan Event, h.bufSize),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.finish()
		return sub
	}

	group, ok := h.pages[pageID]
	if !ok {
		group = make(map[*Subscription]struct{})
		h.pages[pageID] = group
	}
	// Membership is a set: re-adding the same subscription has no
	// additional effect.
	if _, exists := group[sub]; !exists {
		group[sub] = struct{}{}
		metrics.Subscribers.Inc()
	}

	return sub
}

// Unsubscribe removes the subscription from its page group and signals
// its Done channel. Safe to call multiple times; a no-op if the
// subscription is not registered.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.pages[sub.PageID]
	if !ok {
		return
	}
	if _, exists := group[sub]; !exists {
		return
	}

	delete(group, sub)
	if len(group) == 0 {
		delete(h.pages, sub.PageID)
	}
	sub.finish()
	metrics.Subscribers.Dec()
}

// Publish delivers the event to every subscription currently in the
// page's group. Delivery is best-effort: sends are non-blocking, and a
// subscriber whose buffer is full misses the event rather than stalling
// the publisher. Publish never returns an error; publishing to a page
// with no subscribers is a no-op.
func (h *Hub) Publish(pageID string, ev Event) {
	// Snapshot the group under the read lock, then send outside it so
	// slow consumers cannot stall subscribe/unsubscribe or other
	// publishes.
	h.mu.RLock()
	var subs []*Subscription
	if group, ok := h.pages[pageID]; ok {
		subs = make([]*Subscription, 0, len(group))
		for sub := range group {
			subs = append(subs, sub)
		}
	}
	h.mu.RUnlock()

	metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()

	if len(subs) == 0 {
		return
	}

	dropped := 0
	for _, sub := range subs {
		select {
		case <-sub.done:
			// Unsubscribed after the snapshot was taken.
		case sub.c <- ev:
		default:
			// Subscriber buffer full, drop the event for it.
			dropped++
		}
	}
	if dropped > 0 {
		metrics.EventsDropped.Add(float64(dropped))
		slog.Debug("dropped events for slow subscribers",
			"page_id", pageID,
			"type", ev.Type,
			"dropped", dropped,
		)
	}
}

// SubscriberCount returns the number of live subscriptions for a page.
func (h *Hub) SubscriberCount(pageID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.pages[pageID])
}

// Close removes every subscription and rejects future ones. Called
// during shutdown so stream handlers observe Done and exit.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for pageID, group := range h.pages {
		for sub := range group {
			sub.finish()
			metrics.Subscribers.Dec()
		}
		delete(h.pages, pageID)
	}
}
