package repository

import (
	"context"
	"errors"

	"github.com/xavierspacelix/jamming/internal/domain"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrIncompleteReorder = errors.New("reorder list does not cover all entries")
)

// RoomRepository defines the data access interface for rooms.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByCode(ctx context.Context, code string) (*domain.Room, error)
	GetByID(ctx context.Context, id string) (*domain.Room, error)
}

// QueueRepository defines the data access interface for queue entries.
//
// Mutations are atomic at the database level; callers are responsible for
// serializing mutations per room so position assignment never races.
type QueueRepository interface {
	// Append stores the entry with the next free position in its room
	// (max existing + 1, or 1 for an empty room) and fills in ID,
	// Position, and CreatedAt.
	Append(ctx context.Context, entry *domain.QueueEntry) error

	// Remove deletes the entry. Returns ErrEntryNotFound if it is already gone.
	Remove(ctx context.Context, entryID string) error

	// Reorder atomically renumbers the room's entries to 1..N following
	// orderedIDs. IDs not present in the room are ignored. Entries omitted
	// from orderedIDs keep their relative order after the supplied ones,
	// unless strict is set, in which case ErrIncompleteReorder is returned.
	Reorder(ctx context.Context, roomID string, orderedIDs []string, strict bool) error

	GetEntry(ctx context.Context, entryID string) (*domain.QueueEntry, error)

	// ListByRoom returns the room's entries ordered by position, with ties
	// broken by creation time then id.
	ListByRoom(ctx context.Context, roomID string) ([]domain.QueueEntry, error)

	// AddVote adjusts the entry's vote counter and returns the updated entry.
	AddVote(ctx context.Context, entryID string, delta int) (*domain.QueueEntry, error)
}
