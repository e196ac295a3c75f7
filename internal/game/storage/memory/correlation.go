package memory

import (
	"context"
	"sync"

	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/game/storage"
)

// CorrelationIndex is an in-memory CorrelationIndex. Message entries are
// overwritten every round; keeping only the latest entry per user is what
// makes stale replies miss instead of resolving to a finished round.
type CorrelationIndex struct {
	mu       sync.RWMutex
	messages map[domain.UserID]messageEntry
	polls    map[domain.PollID]domain.RoomID
}

type messageEntry struct {
	message domain.MessageID
	room    domain.RoomID
}

// NewCorrelationIndex constructs an empty correlation index.
func NewCorrelationIndex() *CorrelationIndex {
	return &CorrelationIndex{
		messages: make(map[domain.UserID]messageEntry),
		polls:    make(map[domain.PollID]domain.RoomID),
	}
}

// PutMessage records the private message most recently sent to a user,
// superseding any prior entry for that user.
func (i *CorrelationIndex) PutMessage(_ context.Context, user domain.UserID, message domain.MessageID, room domain.RoomID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.messages[user] = messageEntry{message: message, room: room}
	return nil
}

// RoomByMessage resolves a reply to its owning room. Replies referencing a
// superseded message id fail with ErrNotFound.
func (i *CorrelationIndex) RoomByMessage(_ context.Context, user domain.UserID, message domain.MessageID) (domain.RoomID, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	entry, ok := i.messages[user]
	if !ok || entry.message != message {
		return "", storage.ErrNotFound
	}
	return entry.room, nil
}

// PutPoll records the owning room of a poll.
func (i *CorrelationIndex) PutPoll(_ context.Context, poll domain.PollID, room domain.RoomID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.polls[poll] = room
	return nil
}

// RoomByPoll resolves a poll answer to its owning room.
func (i *CorrelationIndex) RoomByPoll(_ context.Context, poll domain.PollID) (domain.RoomID, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	room, ok := i.polls[poll]
	if !ok {
		return "", storage.ErrNotFound
	}
	return room, nil
}
