// Package events fans committed capture batches out to live subscribers —
// browser tabs watching the event stream over WebSocket.
package events

import (
	"encoding/json"
	"sync"

	"github.com/memri-app/memri/internal/capture"
)

// broadcastCapacity bounds each subscriber's buffered channel; a slow
// subscriber that falls this far behind starts losing events rather than
// blocking the producer.
const broadcastCapacity = 64

// capturePayload is the on-wire shape of a capture event.
type capturePayload struct {
	Type        string `json:"type"`
	FrameNumber int64  `json:"frame_number"`
	TimestampMs int64  `json:"timestamp_ms"`
	Windows     int    `json:"windows"`
}

// chatPayload is the on-wire shape of a chat event.
type chatPayload struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Hub is a bounded broadcast channel of JSON-encoded events. Publish is
// always non-blocking: a subscriber with a full buffer loses the event
// rather than stalling every capture loop behind it.
type Hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a new receiver and returns its channel plus an
// unsubscribe function the caller must call when done.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, broadcastCapacity)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish implements capture.EventEmitter: it encodes batch as a capture
// event and offers it to every subscriber without blocking.
func (h *Hub) Publish(batch capture.CaptureBatch) {
	data, err := json.Marshal(capturePayload{
		Type:        "capture",
		FrameNumber: batch.FrameNumber,
		TimestampMs: batch.TimestampMs,
		Windows:     len(batch.Records),
	})
	if err != nil {
		return
	}
	h.broadcast(data)
}

// PublishChat offers a chat event to every subscriber, same best-effort
// semantics as Publish.
func (h *Hub) PublishChat(role, content string) {
	data, err := json.Marshal(chatPayload{Type: "chat", Role: role, Content: content})
	if err != nil {
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			// Slow subscriber: drop rather than block the producer.
		}
	}
}
