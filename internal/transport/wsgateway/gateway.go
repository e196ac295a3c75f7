// Package wsgateway exposes the bot over a WebSocket chat surface. Clients
// identify themselves with a hello frame, subscribe to chats and exchange
// JSON frames; the gateway translates frames into transport events and
// outbound sends into frames.
package wsgateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/transport"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
)

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type helloPayload struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type joinPayload struct {
	ChatID string `json:"chat_id"`
}

type commandPayload struct {
	ChatID string   `json:"chat_id"`
	Name   string   `json:"name"`
	Args   []string `json:"args,omitempty"`
}

type replyPayload struct {
	Text    string `json:"text"`
	ReplyTo int64  `json:"reply_to,omitempty"`
}

type pollAnswerPayload struct {
	PollID string `json:"poll_id"`
	Option int    `json:"option"`
}

type messagePayload struct {
	ChatID    string `json:"chat_id,omitempty"`
	MessageID int64  `json:"message_id"`
	Body      string `json:"body"`
}

type pollOpenPayload struct {
	ChatID    string   `json:"chat_id"`
	PollID    string   `json:"poll_id"`
	MessageID int64    `json:"message_id"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
}

type pollClosedPayload struct {
	ChatID    string `json:"chat_id"`
	MessageID int64  `json:"message_id"`
}

type wsErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// Gateway bridges WebSocket clients and the bot. It implements
// transport.Transport for outbound traffic and pushes inbound frames to the
// registered handler.
type Gateway struct {
	logger *slog.Logger

	mu      sync.Mutex
	handler transport.Handler
	users   map[domain.UserID]*wsPeer
	chats   map[domain.RoomID]map[*wsPeer]struct{}

	nextMessageID atomic.Int64
	newPollID     func() string
}

// New builds an empty gateway.
func New(logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		logger:    logger,
		users:     make(map[domain.UserID]*wsPeer),
		chats:     make(map[domain.RoomID]map[*wsPeer]struct{}),
		newPollID: uuid.NewString,
	}
}

// SetHandler registers the inbound event consumer. Must be called before
// the gateway serves connections.
func (g *Gateway) SetHandler(handler transport.Handler) {
	g.mu.Lock()
	g.handler = handler
	g.mu.Unlock()
}

// Handler returns the HTTP routes of the gateway.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(g.serve)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})
	return mux
}

// SendUser implements transport.Transport.
func (g *Gateway) SendUser(_ context.Context, user domain.UserID, text string) (domain.MessageID, error) {
	g.mu.Lock()
	peer := g.users[user]
	g.mu.Unlock()
	if peer == nil {
		return 0, fmt.Errorf("user %d is not connected", user)
	}

	id := domain.MessageID(g.nextMessageID.Add(1))
	err := peer.writeFrame(wsFrame{
		Type:    "user.message",
		Payload: mustJSON(messagePayload{MessageID: int64(id), Body: text}),
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SendChat implements transport.Transport.
func (g *Gateway) SendChat(_ context.Context, chat domain.RoomID, text string) (domain.MessageID, error) {
	id := domain.MessageID(g.nextMessageID.Add(1))
	g.broadcast(chat, wsFrame{
		Type:    "chat.message",
		Payload: mustJSON(messagePayload{ChatID: string(chat), MessageID: int64(id), Body: text}),
	})
	return id, nil
}

// SendPoll implements transport.Transport.
func (g *Gateway) SendPoll(_ context.Context, chat domain.RoomID, question string, options []string) (transport.Poll, error) {
	poll := transport.Poll{
		ID:        domain.PollID(g.newPollID()),
		MessageID: domain.MessageID(g.nextMessageID.Add(1)),
	}
	g.broadcast(chat, wsFrame{
		Type: "poll.open",
		Payload: mustJSON(pollOpenPayload{
			ChatID:    string(chat),
			PollID:    string(poll.ID),
			MessageID: int64(poll.MessageID),
			Question:  question,
			Options:   options,
		}),
	})
	return poll, nil
}

// StopPoll implements transport.Transport.
func (g *Gateway) StopPoll(_ context.Context, chat domain.RoomID, message domain.MessageID) error {
	g.broadcast(chat, wsFrame{
		Type:    "poll.closed",
		Payload: mustJSON(pollClosedPayload{ChatID: string(chat), MessageID: int64(message)}),
	})
	return nil
}

func (g *Gateway) broadcast(chat domain.RoomID, frame wsFrame) {
	g.mu.Lock()
	subscribers := make([]*wsPeer, 0, len(g.chats[chat]))
	for peer := range g.chats[chat] {
		subscribers = append(subscribers, peer)
	}
	g.mu.Unlock()

	for _, peer := range subscribers {
		if err := peer.writeFrame(frame); err != nil {
			g.logger.Debug("broadcast write failed", "chat", string(chat), "error", err)
		}
	}
}

func (g *Gateway) serve(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	peer := newWSPeer(json.NewEncoder(conn))

	var identity *domain.User
	defer func() {
		if identity != nil {
			g.disconnect(identity.ID, peer)
		}
	}()

	ctx := context.Background()
	if request := conn.Request(); request != nil {
		ctx = request.Context()
	}

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(peer, "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(peer, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(peer, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		if frame.Type == "hello" {
			user, err := g.handleHello(frame, peer)
			if err != nil {
				_ = writeWSError(peer, "INVALID_ARGUMENT", err.Error())
				continue
			}
			identity = user
			continue
		}
		if identity == nil {
			_ = writeWSError(peer, "UNAUTHENTICATED", "hello frame required first")
			continue
		}

		switch frame.Type {
		case "chat.join":
			g.handleJoin(frame, peer)
		case "chat.command":
			g.handleCommand(ctx, frame, peer, *identity)
		case "chat.reply":
			g.handleReply(ctx, frame, peer, *identity)
		case "poll.answer":
			g.handlePollAnswer(ctx, frame, peer, *identity)
		default:
			_ = writeWSError(peer, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func (g *Gateway) handleHello(frame wsFrame, peer *wsPeer) (*domain.User, error) {
	var payload helloPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		return nil, errors.New("invalid hello payload")
	}
	if payload.UserID == 0 {
		return nil, errors.New("user_id is required")
	}
	name := strings.TrimSpace(payload.DisplayName)
	if name == "" {
		name = fmt.Sprintf("player-%d", payload.UserID)
	}

	user := &domain.User{ID: domain.UserID(payload.UserID), DisplayName: name}
	g.mu.Lock()
	g.users[user.ID] = peer
	g.mu.Unlock()
	return user, nil
}

func (g *Gateway) handleJoin(frame wsFrame, peer *wsPeer) {
	var payload joinPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(peer, "INVALID_ARGUMENT", "invalid join payload")
		return
	}
	chat := domain.RoomID(strings.TrimSpace(payload.ChatID))
	if chat == "" {
		_ = writeWSError(peer, "INVALID_ARGUMENT", "chat_id is required")
		return
	}

	g.mu.Lock()
	subscribers, ok := g.chats[chat]
	if !ok {
		subscribers = make(map[*wsPeer]struct{})
		g.chats[chat] = subscribers
	}
	subscribers[peer] = struct{}{}
	g.mu.Unlock()
}

func (g *Gateway) handleCommand(ctx context.Context, frame wsFrame, peer *wsPeer, from domain.User) {
	var payload commandPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(peer, "INVALID_ARGUMENT", "invalid command payload")
		return
	}
	chat := domain.RoomID(strings.TrimSpace(payload.ChatID))
	name := strings.TrimPrefix(strings.TrimSpace(payload.Name), "/")
	if chat == "" || name == "" {
		_ = writeWSError(peer, "INVALID_ARGUMENT", "chat_id and name are required")
		return
	}
	g.deliver(ctx, transport.Command{Chat: chat, From: from, Name: name, Args: payload.Args})
}

func (g *Gateway) handleReply(ctx context.Context, frame wsFrame, peer *wsPeer, from domain.User) {
	var payload replyPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(peer, "INVALID_ARGUMENT", "invalid reply payload")
		return
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		_ = writeWSError(peer, "INVALID_ARGUMENT", "text is required")
		return
	}
	g.deliver(ctx, transport.Reply{From: from, Text: text, ReplyTo: domain.MessageID(payload.ReplyTo)})
}

func (g *Gateway) handlePollAnswer(ctx context.Context, frame wsFrame, peer *wsPeer, from domain.User) {
	var payload pollAnswerPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(peer, "INVALID_ARGUMENT", "invalid poll answer payload")
		return
	}
	poll := domain.PollID(strings.TrimSpace(payload.PollID))
	if poll == "" {
		_ = writeWSError(peer, "INVALID_ARGUMENT", "poll_id is required")
		return
	}
	g.deliver(ctx, transport.PollAnswer{Poll: poll, From: from, Option: payload.Option})
}

func (g *Gateway) deliver(ctx context.Context, event transport.Event) {
	g.mu.Lock()
	handler := g.handler
	g.mu.Unlock()
	if handler == nil {
		g.logger.Error("no event handler registered, dropping event")
		return
	}
	handler.HandleEvent(ctx, event)
}

func (g *Gateway) disconnect(user domain.UserID, peer *wsPeer) {
	g.mu.Lock()
	if g.users[user] == peer {
		delete(g.users, user)
	}
	for chat, subscribers := range g.chats {
		delete(subscribers, peer)
		if len(subscribers) == 0 {
			delete(g.chats, chat)
		}
	}
	g.mu.Unlock()
}

func writeWSError(peer *wsPeer, code, message string) error {
	return peer.writeFrame(wsFrame{
		Type:    "error",
		Payload: mustJSON(wsErrorPayload{Code: code, Message: message}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

var _ transport.Transport = (*Gateway)(nil)
