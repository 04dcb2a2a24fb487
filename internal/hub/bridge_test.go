package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/pkg/pubsub"
)

// fakeBus is an in-memory pubsub.PubSub that loops published events back to
// its subscribers, like a single-node Redis would.
type fakeBus struct {
	mu        sync.Mutex
	channels  map[string]chan *pubsub.Event
	published []*pubsub.Event
	failPub   bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{channels: make(map[string]chan *pubsub.Event)}
}

func (f *fakeBus) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPub {
		return errors.New("bus unavailable")
	}
	f.published = append(f.published, event)
	if ch, ok := f.channels[channel]; ok {
		ch <- event
	}
	return nil
}

func (f *fakeBus) Subscribe(_ context.Context, channel string) (<-chan *pubsub.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan *pubsub.Event, 16)
	f.channels[channel] = ch
	return ch, nil
}

func (f *fakeBus) Unsubscribe(_ context.Context, channel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.channels[channel]; ok {
		close(ch)
		delete(f.channels, channel)
	}
	return nil
}

func (f *fakeBus) Close() error { return nil }

func (f *fakeBus) subscriptionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channels)
}

func (f *fakeBus) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func TestBridgeRoutesPublishThroughBus(t *testing.T) {
	h := New(4)
	defer h.Close()
	bus := newFakeBus()
	bridge := NewBridge(context.Background(), h, bus)

	sub := bridge.Subscribe("ROOM1")
	defer bridge.Unsubscribe(sub)

	bridge.Publish("ROOM1", snapWithLen(2))

	got := receiveOne(t, sub)
	assert.Len(t, got.Queue, 2)
	assert.Equal(t, 1, bus.publishedCount(), "snapshot must travel via the bus")
}

func TestBridgeHoldsOneBusSubscriptionPerRoom(t *testing.T) {
	h := New(4)
	defer h.Close()
	bus := newFakeBus()
	bridge := NewBridge(context.Background(), h, bus)

	a := bridge.Subscribe("ROOM1")
	b := bridge.Subscribe("ROOM1")
	c := bridge.Subscribe("ROOM2")
	assert.Equal(t, 2, bus.subscriptionCount())

	bridge.Unsubscribe(a)
	assert.Equal(t, 2, bus.subscriptionCount(), "room still has a local subscriber")

	bridge.Unsubscribe(b)
	assert.Equal(t, 1, bus.subscriptionCount(), "last local subscriber tears the bus subscription down")

	bridge.Unsubscribe(c)
	assert.Equal(t, 0, bus.subscriptionCount())
}

func TestBridgeFallsBackToLocalDeliveryWhenBusFails(t *testing.T) {
	h := New(4)
	defer h.Close()
	bus := newFakeBus()
	bus.failPub = true
	bridge := NewBridge(context.Background(), h, bus)

	sub := bridge.Subscribe("ROOM1")
	defer bridge.Unsubscribe(sub)

	bridge.Publish("ROOM1", snapWithLen(1))

	got := receiveOne(t, sub)
	assert.Len(t, got.Queue, 1)
	assert.Zero(t, bus.publishedCount())
}

func TestBridgeIgnoresForeignEventTypes(t *testing.T) {
	h := New(4)
	defer h.Close()
	bus := newFakeBus()
	bridge := NewBridge(context.Background(), h, bus)

	sub := bridge.Subscribe("ROOM1")
	defer bridge.Unsubscribe(sub)

	other, err := pubsub.NewEvent("presence_update", "ROOM1", map[string]int{"viewers": 3})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), pubsub.RoomChannel("ROOM1"), other))

	select {
	case <-sub.C():
		t.Fatal("non-snapshot event must not reach subscribers")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBridgeDeliversEventsArrivingFromOtherProcesses(t *testing.T) {
	h := New(4)
	defer h.Close()
	bus := newFakeBus()
	bridge := NewBridge(context.Background(), h, bus)

	sub := bridge.Subscribe("ROOM1")
	defer bridge.Unsubscribe(sub)

	// Simulates a snapshot published by another process: it arrives on the
	// bus channel without going through this bridge's Publish.
	event, err := pubsub.NewEvent(pubsub.EventQueueSnapshot, "ROOM1", &domain.QueueSnapshot{
		Queue: []domain.QueueEntry{{ID: "remote", Position: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), pubsub.RoomChannel("ROOM1"), event))

	got := receiveOne(t, sub)
	require.Len(t, got.Queue, 1)
	assert.Equal(t, "remote", got.Queue[0].ID)
}
