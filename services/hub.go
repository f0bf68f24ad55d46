package services

import (
	"sync"

	"civictrack/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// subscriberBuffer bounds how far a slow viewer may lag before events to it
// are dropped. Dropped events are recovered by the viewer's next full fetch.
const subscriberBuffer = 16

// Hub fans new issues out to the live streams connected to this instance.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan models.Issue
	closed      bool
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]chan models.Issue)}
}

// Subscribe registers a new listener. The returned channel is closed by
// Unsubscribe.
func (h *Hub) Subscribe() (string, <-chan models.Issue) {
	id := uuid.NewString()
	ch := make(chan models.Issue, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch
	}
	h.subscribers[id] = ch
	h.mu.Unlock()

	log.Debug().Str("subscriber", id).Msg("Live subscriber connected")
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if ok {
		close(ch)
		log.Debug().Str("subscriber", id).Msg("Live subscriber disconnected")
	}
}

// Broadcast delivers issue to every subscriber without blocking.
func (h *Hub) Broadcast(issue models.Issue) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- issue:
		default:
			log.Warn().Str("subscriber", id).Str("issue_id", issue.ID).Msg("Live subscriber lagging, event dropped")
		}
	}
}

// Close ends every live stream and turns away new subscribers. The server
// calls it on shutdown so open streams do not hold the shutdown deadline.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
	log.Info().Msg("Live hub closed")
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
