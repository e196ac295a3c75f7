// Package transport defines the messaging boundary of the bot. The core
// never depends on a chat network's wire format beyond these shapes.
package transport

import (
	"context"

	"github.com/louisbranch/fictionary/internal/game/domain"
)

// Poll is the transport's handle for a created poll.
type Poll struct {
	ID        domain.PollID
	MessageID domain.MessageID
}

// Transport performs outbound sends. Implementations assign message ids;
// the core records them for reply correlation.
type Transport interface {
	// SendUser delivers a private message to one user.
	SendUser(ctx context.Context, user domain.UserID, text string) (domain.MessageID, error)

	// SendChat delivers a message to a room's chat.
	SendChat(ctx context.Context, chat domain.RoomID, text string) (domain.MessageID, error)

	// SendPoll creates an anonymous multiple-choice poll in a room's chat.
	SendPoll(ctx context.Context, chat domain.RoomID, question string, options []string) (Poll, error)

	// StopPoll closes a previously created poll.
	StopPoll(ctx context.Context, chat domain.RoomID, message domain.MessageID) error
}
