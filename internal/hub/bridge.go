package hub

import (
	"context"
	"sync"
	"time"

	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/pkg/log"
	"github.com/xavierspacelix/jamming/pkg/pubsub"
)

const publishTimeout = 2 * time.Second

// Bridge connects a local Hub to an external pub/sub bus so that snapshots
// published by one process reach subscribers pinned to another.
//
// Publish goes to the room's bus channel; the process's own bus
// subscription loops it back to local subscribers. One bus subscription is
// held per locally active room, torn down when the last local subscriber
// leaves.
type Bridge struct {
	hub *Hub
	bus pubsub.PubSub
	ctx context.Context

	mu   sync.Mutex
	refs map[string]int // room code -> local subscriber count
}

// NewBridge creates a Bridge. ctx bounds the lifetime of all bus
// subscriptions; cancel it on shutdown.
func NewBridge(ctx context.Context, h *Hub, bus pubsub.PubSub) *Bridge {
	return &Bridge{
		hub:  h,
		bus:  bus,
		ctx:  ctx,
		refs: make(map[string]int),
	}
}

// Subscribe registers a local subscriber and, for the room's first local
// subscriber, opens the room's bus subscription.
func (b *Bridge) Subscribe(roomCode string) *Subscriber {
	sub := b.hub.Subscribe(roomCode)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.refs[roomCode]++
	if b.refs[roomCode] == 1 {
		events, err := b.bus.Subscribe(b.ctx, pubsub.RoomChannel(roomCode))
		if err != nil {
			l := log.L()
			l.Error().Err(err).Str(log.FieldRoomCode, roomCode).Msg("bus subscribe failed, cross-process delivery degraded")
		} else {
			go b.pump(roomCode, events)
		}
	}

	return sub
}

// Unsubscribe removes the local subscriber and closes the room's bus
// subscription when no local subscriber remains.
func (b *Bridge) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	b.hub.Unsubscribe(sub)

	b.mu.Lock()
	defer b.mu.Unlock()

	room := sub.Room()
	b.refs[room]--
	if b.refs[room] <= 0 {
		delete(b.refs, room)
		if err := b.bus.Unsubscribe(b.ctx, pubsub.RoomChannel(room)); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldRoomCode, room).Msg("bus unsubscribe failed")
		}
	}
}

// Publish sends the snapshot to the room's bus channel. If the bus is
// unreachable the snapshot is delivered to local subscribers directly, so a
// bus outage degrades to single-process behavior instead of silence. The
// failure is logged, never retried inline: mutation latency must not pay
// for bus recovery.
func (b *Bridge) Publish(roomCode string, snap *domain.QueueSnapshot) {
	event, err := pubsub.NewEvent(pubsub.EventQueueSnapshot, roomCode, snap)
	if err != nil {
		l := log.L()
		l.Error().Err(err).Str(log.FieldRoomCode, roomCode).Msg("failed to encode snapshot event")
		b.hub.Publish(roomCode, snap)
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, publishTimeout)
	defer cancel()

	if err := b.bus.Publish(ctx, pubsub.RoomChannel(roomCode), event); err != nil {
		l := log.L()
		l.Error().Err(err).Str(log.FieldRoomCode, roomCode).Msg("bus unavailable, falling back to local delivery")
		b.hub.Publish(roomCode, snap)
	}
}

// pump re-emits inbound bus events to the local subscriber set. It exits
// when the bus subscription is closed.
func (b *Bridge) pump(roomCode string, events <-chan *pubsub.Event) {
	for event := range events {
		if event.Type != pubsub.EventQueueSnapshot {
			continue
		}

		var snap domain.QueueSnapshot
		if err := event.UnmarshalPayload(&snap); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldRoomCode, roomCode).Msg("dropping malformed snapshot event")
			continue
		}

		b.hub.Publish(roomCode, &snap)
	}
}
