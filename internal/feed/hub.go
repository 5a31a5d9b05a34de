package feed

import (
	"sync"

	"eventdesk/internal/models"
)

// Subscription is a cancellable handle on the event feed. Snapshots
// arrive on C as wholesale replacements; no diffing.
type Subscription struct {
	C <-chan []models.Event

	once sync.Once
	stop func()
}

// Stop releases the subscription. Safe to call more than once.
func (s *Subscription) Stop() {
	s.once.Do(s.stop)
}

// Hub fans full-list snapshots out to every live subscriber. Each
// subscriber channel holds at most one pending snapshot; a newer one
// displaces it, so slow readers always see the latest state.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan []models.Event
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []models.Event)}
}

func (h *Hub) Subscribe() *Subscription {
	ch := make(chan []models.Event, 1)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	return &Subscription{
		C: ch,
		stop: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		},
	}
}

func (h *Hub) Broadcast(events []models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- events:
		default:
			// displace the stale snapshot
			select {
			case <-ch:
			default:
			}
			ch <- events
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
