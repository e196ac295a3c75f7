// Package botfakes provides in-memory fakes for the bot's collaborators.
package botfakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/transport"
)

// SentMessage is one recorded outbound message.
type SentMessage struct {
	ID   domain.MessageID
	Text string
}

// SentPoll is one recorded outbound poll.
type SentPoll struct {
	Room      domain.RoomID
	ID        domain.PollID
	MessageID domain.MessageID
	Question  string
	Options   []string
}

// StoppedPoll is one recorded StopPoll call.
type StoppedPoll struct {
	Room    domain.RoomID
	Message domain.MessageID
}

// Transport records every send and mints sequential message and poll ids.
// Safe for concurrent use.
type Transport struct {
	mu          sync.Mutex
	nextMessage domain.MessageID
	nextPoll    int

	UserMessages map[domain.UserID][]SentMessage
	ChatMessages map[domain.RoomID][]SentMessage
	Polls        []SentPoll
	Stopped      []StoppedPoll

	// UserErr fails SendUser for specific users.
	UserErr map[domain.UserID]error
}

// NewTransport creates an empty fake transport.
func NewTransport() *Transport {
	return &Transport{
		UserMessages: map[domain.UserID][]SentMessage{},
		ChatMessages: map[domain.RoomID][]SentMessage{},
		UserErr:      map[domain.UserID]error{},
	}
}

// SendUser implements transport.Transport.
func (t *Transport) SendUser(_ context.Context, user domain.UserID, text string) (domain.MessageID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.UserErr[user]; err != nil {
		return 0, err
	}
	t.nextMessage++
	t.UserMessages[user] = append(t.UserMessages[user], SentMessage{ID: t.nextMessage, Text: text})
	return t.nextMessage, nil
}

// SendChat implements transport.Transport.
func (t *Transport) SendChat(_ context.Context, chat domain.RoomID, text string) (domain.MessageID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextMessage++
	t.ChatMessages[chat] = append(t.ChatMessages[chat], SentMessage{ID: t.nextMessage, Text: text})
	return t.nextMessage, nil
}

// SendPoll implements transport.Transport.
func (t *Transport) SendPoll(_ context.Context, chat domain.RoomID, question string, options []string) (transport.Poll, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextMessage++
	t.nextPoll++
	poll := SentPoll{
		Room:      chat,
		ID:        domain.PollID(fmt.Sprintf("poll-%d", t.nextPoll)),
		MessageID: t.nextMessage,
		Question:  question,
		Options:   append([]string(nil), options...),
	}
	t.Polls = append(t.Polls, poll)
	return transport.Poll{ID: poll.ID, MessageID: poll.MessageID}, nil
}

// StopPoll implements transport.Transport.
func (t *Transport) StopPoll(_ context.Context, chat domain.RoomID, message domain.MessageID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Stopped = append(t.Stopped, StoppedPoll{Room: chat, Message: message})
	return nil
}

// LastUserMessage returns the latest message sent to a user.
func (t *Transport) LastUserMessage(user domain.UserID) (SentMessage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	messages := t.UserMessages[user]
	if len(messages) == 0 {
		return SentMessage{}, false
	}
	return messages[len(messages)-1], true
}

// LastPoll returns the latest sent poll.
func (t *Transport) LastPoll() (SentPoll, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Polls) == 0 {
		return SentPoll{}, false
	}
	return t.Polls[len(t.Polls)-1], true
}

// ChatTexts returns the texts sent to a chat, in order.
func (t *Transport) ChatTexts(chat domain.RoomID) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.ChatMessages[chat]))
	for _, message := range t.ChatMessages[chat] {
		out = append(out, message.Text)
	}
	return out
}

// Corpus supplies a fixed question list, or fails with Err.
type Corpus struct {
	mu        sync.Mutex
	Questions []domain.Question
	Err       error
	Requests  []int
}

// Supply implements corpus.Provider.
func (c *Corpus) Supply(_ context.Context, n int) ([]domain.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests = append(c.Requests, n)
	if c.Err != nil {
		return nil, c.Err
	}
	if n > len(c.Questions) {
		n = len(c.Questions)
	}
	return append([]domain.Question(nil), c.Questions[:n]...), nil
}

// NoShuffle keeps poll options in their deterministic base order.
func NoShuffle(int, func(i, j int)) {}
