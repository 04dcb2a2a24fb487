package service

import (
	"context"
	"errors"

	"github.com/xavierspacelix/jamming/internal/domain"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrIncompleteReorder = errors.New("reorder list must include every entry in the room")
	ErrInvalidInput      = errors.New("invalid input")
)

// RoomService provisions and resolves rooms.
type RoomService interface {
	CreateRoom(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error)
	GetRoom(ctx context.Context, code string) (*domain.RoomResponse, error)
	ValidateRoom(ctx context.Context, code string) (*domain.ValidateRoomResponse, error)
}

// QueueService owns all mutations of room queues. Every successful mutation
// publishes the resulting snapshot to the room's subscribers exactly once.
type QueueService interface {
	Append(ctx context.Context, roomCode string, video domain.MediaRef, requestedBy string) (*domain.QueueEntry, error)
	Remove(ctx context.Context, entryID string) (*domain.QueueSnapshot, error)
	Reorder(ctx context.Context, roomCode string, entryIDs []string) (*domain.QueueSnapshot, error)
	Snapshot(ctx context.Context, roomCode string) (*domain.QueueSnapshot, error)
	Vote(ctx context.Context, entryID string, delta int) (*domain.QueueEntry, error)
}

// Broadcaster fans a snapshot out to a room's current subscribers.
// Implemented by hub.Hub (single process) and hub.Bridge (bus-backed).
// The queue service calls Publish under the room's mutation lock, so for any
// one room the broadcaster receives snapshots in mutation order.
type Broadcaster interface {
	Publish(roomCode string, snap *domain.QueueSnapshot)
}
