// Package storage defines the persistence interfaces for room state and
// message correlation. Room state is ephemeral by design: implementations
// are in-memory and state is intentionally lost on restart.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/fictionary/internal/game/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a record with the same key is already present.
var ErrAlreadyExists = errors.New("record already exists")

// RoomStore owns every active room. All room lifecycle funnels through it
// so "room must exist" is enforced in a single place, and all mutation goes
// through Update, which serializes access per room.
type RoomStore interface {
	// Create inserts an empty room. Fails with ErrAlreadyExists.
	Create(ctx context.Context, id domain.RoomID) error

	// Update runs fn against the room under its lock. Fails with
	// ErrNotFound; any error from fn is returned unchanged and leaves the
	// room as fn left it.
	Update(ctx context.Context, id domain.RoomID, fn func(*domain.Room) error) error

	// Delete removes the room. Fails with ErrNotFound.
	Delete(ctx context.Context, id domain.RoomID) error
}

// CorrelationIndex attributes inbound replies and poll answers to their
// owning room without explicit addressing. Per user, only the most recent
// message entry is authoritative: a lookup against a superseded message id
// fails with ErrNotFound rather than resolving to a stale room.
type CorrelationIndex interface {
	PutMessage(ctx context.Context, user domain.UserID, message domain.MessageID, room domain.RoomID) error
	RoomByMessage(ctx context.Context, user domain.UserID, message domain.MessageID) (domain.RoomID, error)

	PutPoll(ctx context.Context, poll domain.PollID, room domain.RoomID) error
	RoomByPoll(ctx context.Context, poll domain.PollID) (domain.RoomID, error)
}
