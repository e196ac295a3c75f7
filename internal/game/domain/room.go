package domain

import "errors"

// RoomID identifies a room. Rooms are keyed by the chat they live in.
type RoomID string

// UserID identifies a chat user.
type UserID int64

// MessageID identifies a message issued by the transport.
type MessageID int64

// PollID identifies a poll issued by the transport.
type PollID string

var (
	// ErrAlreadyMember indicates the user is already in the room.
	ErrAlreadyMember = errors.New("user is already a participant")
	// ErrNotMember indicates the user is not in the room.
	ErrNotMember = errors.New("user is not a participant")
)

// User is a participant's display identity.
type User struct {
	ID          UserID
	DisplayName string
}

// Room is one isolated game instance.
type Room struct {
	ID           RoomID
	Participants map[UserID]User
	Game         *Game
	Round        *RoundState
}

// NewRoom creates an empty room with fresh containers.
func NewRoom(id RoomID) *Room {
	return &Room{
		ID:           id,
		Participants: make(map[UserID]User),
	}
}

// AddParticipant inserts a user into the room.
func (r *Room) AddParticipant(user User) error {
	if _, ok := r.Participants[user.ID]; ok {
		return ErrAlreadyMember
	}
	r.Participants[user.ID] = user
	return nil
}

// RemoveParticipant removes a user from the room.
func (r *Room) RemoveParticipant(id UserID) error {
	if _, ok := r.Participants[id]; !ok {
		return ErrNotMember
	}
	delete(r.Participants, id)
	return nil
}

// HasParticipant reports whether the user is in the room.
func (r *Room) HasParticipant(id UserID) bool {
	_, ok := r.Participants[id]
	return ok
}
