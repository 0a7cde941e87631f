package fetch

import (
	"sync"

	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
)

// eventBuffer sizes each subscriber channel. A subscriber that falls
// this far behind starts losing events rather than blocking the pool.
const eventBuffer = 64

// Hub fans job progress events out to subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan types.Event]struct{}
}

// NewHub creates an empty event hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan types.Event]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be
// called exactly once; it closes the channel.
func (h *Hub) Subscribe() (<-chan types.Event, func()) {
	ch := make(chan types.Event, eventBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// Publish delivers evt to every subscriber, dropping it for any whose
// buffer is full.
func (h *Hub) Publish(evt types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribers returns the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
