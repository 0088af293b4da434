package sse

import (
	"sync"
)

// Event is a broadcast notification: a topic plus an arbitrary payload.
// Delivery is fire-and-forget with no ordering guarantee across topics.
type Event struct {
	Topic string      `json:"topic"`
	Data  interface{} `json:"data,omitempty"`
}

// Hub fans events out to every connected subscriber. Connected clients use it
// to learn that records or settings changed; nothing in the engine depends on
// delivery.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewHub creates a new broadcast Hub instance.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber and returns the event channel and a cleanup
// function.
func (h *Hub) Subscribe() (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	h.subscribers[ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}

	return ch, cleanup
}

// Publish broadcasts an event to all subscribers. Slow subscribers with a full
// buffer are skipped rather than blocked on.
func (h *Hub) Publish(topic string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event := Event{Topic: topic, Data: data}
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
