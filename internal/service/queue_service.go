package service

import (
	"context"
	"errors"

	"github.com/xavierspacelix/jamming/internal/audit"
	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/internal/repository"
	"github.com/xavierspacelix/jamming/pkg/log"
)

// queueServiceImpl implements QueueService.
type queueServiceImpl struct {
	rooms       repository.RoomRepository
	queue       repository.QueueRepository
	broadcaster Broadcaster
	locks       *roomLocks
	// strictReorder rejects reorder lists that omit entries instead of
	// appending the omitted ones at the tail.
	strictReorder bool
}

// NewQueueService creates a new queue service.
func NewQueueService(rooms repository.RoomRepository, queue repository.QueueRepository, broadcaster Broadcaster, strictReorder bool) QueueService {
	return &queueServiceImpl{
		rooms:         rooms,
		queue:         queue,
		broadcaster:   broadcaster,
		locks:         newRoomLocks(),
		strictReorder: strictReorder,
	}
}

// Append adds an entry at the tail of the room's queue and broadcasts the
// resulting snapshot.
func (s *queueServiceImpl) Append(ctx context.Context, roomCode string, video domain.MediaRef, requestedBy string) (*domain.QueueEntry, error) {
	if video.VideoID == "" || video.Title == "" {
		return nil, ErrInvalidInput
	}
	if requestedBy == "" {
		requestedBy = "Guest"
	}

	room, err := s.resolveRoom(ctx, roomCode)
	if err != nil {
		return nil, err
	}

	entry := &domain.QueueEntry{
		RoomID:      room.ID,
		VideoID:     video.VideoID,
		Title:       video.Title,
		Channel:     video.Channel,
		Thumbnail:   video.Thumbnail,
		RequestedBy: requestedBy,
	}

	mu := s.locks.acquire(room.ID)
	if err := s.queue.Append(ctx, entry); err != nil {
		mu.Unlock()
		return nil, err
	}
	snap, err := s.listSnapshot(ctx, room.ID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	// Publish while still holding the room lock: snapshots must reach the
	// broadcaster in mutation order, or a slow publish could overwrite a
	// newer state at every subscriber.
	s.broadcaster.Publish(room.Code, snap)
	mu.Unlock()

	audit.Log(ctx, audit.ActionQueueAppend, requestedBy, "entry appended to queue")
	return entry, nil
}

// Remove deletes an entry and broadcasts the resulting snapshot. Removing
// an entry that is already gone returns ErrEntryNotFound without a
// broadcast; callers treat that as a benign "already gone".
func (s *queueServiceImpl) Remove(ctx context.Context, entryID string) (*domain.QueueSnapshot, error) {
	entry, err := s.queue.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, entry.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	mu := s.locks.acquire(room.ID)
	if err := s.queue.Remove(ctx, entryID); err != nil {
		mu.Unlock()
		if errors.Is(err, repository.ErrEntryNotFound) {
			// Lost a race with a concurrent removal.
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	snap, err := s.listSnapshot(ctx, room.ID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	s.broadcaster.Publish(room.Code, snap)
	mu.Unlock()

	audit.Log(ctx, audit.ActionQueueRemove, entry.RequestedBy, "entry removed from queue")
	return snap, nil
}

// Reorder atomically rewrites the room's order keys to match the requested
// sequence and broadcasts the resulting snapshot.
func (s *queueServiceImpl) Reorder(ctx context.Context, roomCode string, entryIDs []string) (*domain.QueueSnapshot, error) {
	room, err := s.resolveRoom(ctx, roomCode)
	if err != nil {
		return nil, err
	}

	mu := s.locks.acquire(room.ID)
	if err := s.queue.Reorder(ctx, room.ID, entryIDs, s.strictReorder); err != nil {
		mu.Unlock()
		if errors.Is(err, repository.ErrIncompleteReorder) {
			return nil, ErrIncompleteReorder
		}
		return nil, err
	}
	snap, err := s.listSnapshot(ctx, room.ID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	s.broadcaster.Publish(room.Code, snap)
	mu.Unlock()

	audit.Log(ctx, audit.ActionQueueReorder, "", "queue reordered")
	return snap, nil
}

// Snapshot returns the room's current canonical ordering.
func (s *queueServiceImpl) Snapshot(ctx context.Context, roomCode string) (*domain.QueueSnapshot, error) {
	room, err := s.resolveRoom(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	return s.listSnapshot(ctx, room.ID)
}

// Vote adjusts an entry's vote counter and broadcasts the updated snapshot.
// Votes never affect ordering; the order key stays authoritative.
func (s *queueServiceImpl) Vote(ctx context.Context, entryID string, delta int) (*domain.QueueEntry, error) {
	if delta < -1 || delta > 1 {
		return nil, ErrInvalidInput
	}

	existing, err := s.queue.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, existing.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	mu := s.locks.acquire(room.ID)
	entry, err := s.queue.AddVote(ctx, entryID, delta)
	if err != nil {
		mu.Unlock()
		if errors.Is(err, repository.ErrEntryNotFound) {
			// Lost a race with a concurrent removal.
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	snap, err := s.listSnapshot(ctx, room.ID)
	if err != nil {
		mu.Unlock()
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldEntryID, entryID).Msg("vote recorded but snapshot failed, skipping broadcast")
		return entry, nil
	}
	s.broadcaster.Publish(room.Code, snap)
	mu.Unlock()

	audit.Log(ctx, audit.ActionQueueVote, entry.RequestedBy, "entry vote adjusted")
	return entry, nil
}

func (s *queueServiceImpl) resolveRoom(ctx context.Context, roomCode string) (*domain.Room, error) {
	if !domain.ValidRoomCode(roomCode) {
		return nil, ErrInvalidInput
	}
	room, err := s.rooms.GetByCode(ctx, roomCode)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *queueServiceImpl) listSnapshot(ctx context.Context, roomID string) (*domain.QueueSnapshot, error) {
	entries, err := s.queue.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &domain.QueueSnapshot{Queue: entries}, nil
}
