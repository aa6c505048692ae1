package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event signals that the data behind a topic changed. Subscribers re-query
// their own snapshot; the event carries no payload on purpose.
type Event struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
}

// Publisher is what services see: fire-and-forget notification that the
// given topics are stale.
type Publisher interface {
	Publish(topics ...string)
}

// Hub fans events out to in-process subscribers, one channel per
// subscription. Subscribe returns a disposer; callers must invoke it when
// the owning view goes away or the subscription leaks.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan Event // topic -> subscription id -> ch
	log  zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[string]chan Event),
		log:  log,
	}
}

func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, 8)

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[string]chan Event)
	}
	h.subs[topic][id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if m, ok := h.subs[topic]; ok {
			if _, ok := m[id]; ok {
				delete(m, id)
				close(ch)
			}
			if len(m) == 0 {
				delete(h.subs, topic)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish dispatches locally. When a Redis bridge is in front of the hub it
// overrides this so events travel through Redis instead.
func (h *Hub) Publish(topics ...string) {
	for _, t := range topics {
		h.Dispatch(Event{ID: uuid.NewString(), Topic: t})
	}
}

// Dispatch fans a single event out to the topic's subscribers. Sends never
// block: a full buffer means the subscriber already has refreshes queued,
// so the extra wakeup is redundant.
func (h *Hub) Dispatch(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[e.Topic] {
		select {
		case ch <- e:
		default:
			h.log.Debug().Str("topic", e.Topic).Msg("subscriber buffer full, coalescing")
		}
	}
}

// SubscriberCount reports how many subscriptions a topic currently has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
