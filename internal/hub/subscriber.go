package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/xavierspacelix/jamming/internal/domain"
)

// Subscriber is one open delivery path to a connected viewer. It owns a
// buffered inbound channel; the owning stream session drains the channel
// and writes to its transport, so a slow transport never stalls the hub.
type Subscriber struct {
	id   string
	room string
	ch   chan *domain.QueueSnapshot

	// offerMu serializes offer's drain-and-resend: two concurrent offers
	// on a full buffer could otherwise drop the newer snapshot while an
	// older one stays buffered.
	offerMu   sync.Mutex
	closeOnce sync.Once
}

func newSubscriber(roomCode string, buffer int) *Subscriber {
	if buffer < 1 {
		buffer = 1
	}
	return &Subscriber{
		id:   uuid.New().String(),
		room: roomCode,
		ch:   make(chan *domain.QueueSnapshot, buffer),
	}
}

// ID returns the subscriber's unique id.
func (s *Subscriber) ID() string {
	return s.id
}

// Room returns the room code this subscriber is registered for.
func (s *Subscriber) Room() string {
	return s.room
}

// C returns the snapshot delivery channel. It is closed on unsubscribe.
func (s *Subscriber) C() <-chan *domain.QueueSnapshot {
	return s.ch
}

// offer delivers a snapshot without blocking. If the buffer is full the
// oldest pending snapshot is discarded: a busy subscriber only needs the
// latest state, since every snapshot is complete.
func (s *Subscriber) offer(snap *domain.QueueSnapshot) {
	s.offerMu.Lock()
	defer s.offerMu.Unlock()

	select {
	case s.ch <- snap:
		return
	default:
	}

	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}
