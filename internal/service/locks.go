package service

import "sync"

// roomLocks hands out one mutex per room so append, remove, and reorder for
// the same room never interleave their position assignment. Cross-room
// operations share nothing and proceed in parallel.
//
// Locks are kept for the process lifetime; rooms are never deleted here and
// a mutex is a few dozen bytes.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the room's mutex and returns it for unlocking.
func (r *roomLocks) acquire(roomID string) *sync.Mutex {
	r.mu.Lock()
	m, ok := r.locks[roomID]
	if !ok {
		m = &sync.Mutex{}
		r.locks[roomID] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m
}
