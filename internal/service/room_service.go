package service

import (
	"context"
	"errors"
	"strings"

	"github.com/xavierspacelix/jamming/internal/audit"
	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/internal/repository"
)

const codeGenerationAttempts = 5

// roomServiceImpl implements RoomService.
type roomServiceImpl struct {
	rooms repository.RoomRepository
	queue repository.QueueRepository
}

// NewRoomService creates a new room service.
func NewRoomService(rooms repository.RoomRepository, queue repository.QueueRepository) RoomService {
	return &roomServiceImpl{
		rooms: rooms,
		queue: queue,
	}
}

// CreateRoom provisions a room with a fresh random code.
func (s *roomServiceImpl) CreateRoom(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error) {
	host := strings.TrimSpace(req.HostName)
	if host == "" {
		return nil, ErrInvalidInput
	}

	code, err := s.freshCode(ctx)
	if err != nil {
		return nil, err
	}

	room := &domain.Room{
		Code: code,
		Host: host,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionRoomCreate, host, "room created")
	return room, nil
}

// GetRoom returns the room and its current queue.
func (s *roomServiceImpl) GetRoom(ctx context.Context, code string) (*domain.RoomResponse, error) {
	room, err := s.resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	entries, err := s.queue.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	return &domain.RoomResponse{
		Room:  *room,
		Queue: entries,
	}, nil
}

// ValidateRoom confirms the code shape and that the room exists.
func (s *roomServiceImpl) ValidateRoom(ctx context.Context, code string) (*domain.ValidateRoomResponse, error) {
	room, err := s.resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	return &domain.ValidateRoomResponse{
		Code: room.Code,
		Host: room.Host,
	}, nil
}

func (s *roomServiceImpl) resolve(ctx context.Context, code string) (*domain.Room, error) {
	if !domain.ValidRoomCode(code) {
		return nil, ErrInvalidInput
	}
	room, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// freshCode generates a code that does not collide with an existing room.
func (s *roomServiceImpl) freshCode(ctx context.Context) (string, error) {
	for i := 0; i < codeGenerationAttempts; i++ {
		code := domain.GenerateRoomCode()
		_, err := s.rooms.GetByCode(ctx, code)
		if errors.Is(err, repository.ErrRoomNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not generate a unique room code")
}
