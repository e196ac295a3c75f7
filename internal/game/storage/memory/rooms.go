// Package memory provides the in-memory storage implementations backing a
// single bot process.
package memory

import (
	"context"
	"sync"

	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/game/storage"
)

// RoomStore is an in-memory RoomStore. The top-level index is guarded only
// for insert and remove; in-room operations serialize on the room's own
// lock, so rooms proceed fully in parallel.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry
}

type roomEntry struct {
	mu      sync.Mutex
	room    *domain.Room
	deleted bool
}

// NewRoomStore constructs an empty room store.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]*roomEntry)}
}

// Create inserts an empty room.
func (s *RoomStore) Create(_ context.Context, id domain.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; ok {
		return storage.ErrAlreadyExists
	}
	s.rooms[id] = &roomEntry{room: domain.NewRoom(id)}
	return nil
}

// Update runs fn against the room under the room's lock.
func (s *RoomStore) Update(_ context.Context, id domain.RoomID, fn func(*domain.Room) error) error {
	s.mu.RLock()
	entry, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok {
		return storage.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return storage.ErrNotFound
	}
	return fn(entry.room)
}

// Delete removes the room. A concurrent Update holding the room lock
// finishes first; later Updates observe the tombstone and miss.
func (s *RoomStore) Delete(_ context.Context, id domain.RoomID) error {
	s.mu.Lock()
	entry, ok := s.rooms[id]
	if ok {
		delete(s.rooms, id)
	}
	s.mu.Unlock()
	if !ok {
		return storage.ErrNotFound
	}

	entry.mu.Lock()
	entry.deleted = true
	entry.mu.Unlock()
	return nil
}
