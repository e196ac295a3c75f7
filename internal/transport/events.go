package transport

import (
	"context"

	"github.com/louisbranch/fictionary/internal/game/domain"
)

// Event is an inbound transport event. The union is closed: Command, Reply
// and PollAnswer are the only variants, so handlers can switch exhaustively.
type Event interface {
	isEvent()
}

// Command is a named chat command such as /add_me.
type Command struct {
	Chat domain.RoomID
	From domain.User
	Name string
	Args []string
}

// Reply is a free-text private message sent in reply to an earlier
// outbound message.
type Reply struct {
	From    domain.User
	Text    string
	ReplyTo domain.MessageID
}

// PollAnswer is a user's answer to a poll option.
type PollAnswer struct {
	Poll   domain.PollID
	From   domain.User
	Option int
}

func (Command) isEvent()    {}
func (Reply) isEvent()      {}
func (PollAnswer) isEvent() {}

// Handler consumes inbound events. Implemented by the bot front controller.
type Handler interface {
	HandleEvent(ctx context.Context, event Event)
}
