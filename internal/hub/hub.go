package hub

import (
	"sync"

	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/pkg/log"
)

// Hub is the process-wide registry mapping room codes to their current set
// of subscribers. It is constructed once at startup and injected wherever
// snapshots are published or streams are opened.
//
// The hub only fans out: it never mutates queue state, and publishing never
// blocks on any individual subscriber's transport.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscriber]struct{}
	buffer int
}

// New creates a Hub. buffer is the per-subscriber channel capacity.
func New(buffer int) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber for the room and returns it.
// No snapshot is pushed here; the calling session fetches the initial state.
func (h *Hub) Subscribe(roomCode string) *Subscriber {
	sub := newSubscriber(roomCode, h.buffer)

	h.mu.Lock()
	set, ok := h.rooms[roomCode]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.rooms[roomCode] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	l := log.L()
	l.Debug().Str(log.FieldRoomCode, roomCode).Str("subscriber_id", sub.id).Msg("subscriber registered")
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Removing the
// last subscriber of a room drops the room's set entirely.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	if set, ok := h.rooms[sub.room]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.rooms, sub.room)
		}
	}
	sub.close()
	h.mu.Unlock()

	l := log.L()
	l.Debug().Str(log.FieldRoomCode, sub.room).Str("subscriber_id", sub.id).Msg("subscriber deregistered")
}

// Publish delivers the snapshot to every subscriber currently registered
// for the room. Delivery is per-subscriber isolated: a full or abandoned
// subscriber cannot stall the others or the caller.
func (h *Hub) Publish(roomCode string, snap *domain.QueueSnapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[roomCode] {
		sub.offer(snap)
	}
}

// SubscriberCount returns the number of subscribers for a room.
func (h *Hub) SubscriberCount(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomCode])
}

// Close unsubscribes everything. Called on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, set := range h.rooms {
		for sub := range set {
			sub.close()
		}
		delete(h.rooms, room)
	}
}
