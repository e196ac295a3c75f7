package wsgateway

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/transport"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []transport.Event
}

func (h *recordingHandler) HandleEvent(_ context.Context, event transport.Event) {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
}

func (h *recordingHandler) snapshot() []transport.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]transport.Event(nil), h.events...)
}

func newTestGateway(t *testing.T) (*Gateway, *recordingHandler, string) {
	t.Helper()
	gateway := New(nil)
	handler := &recordingHandler{}
	gateway.SetHandler(handler)

	srv := httptest.NewServer(gateway.Handler())
	t.Cleanup(srv.Close)
	return gateway, handler, srv.URL
}

func dialWS(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	conn, err := websocket.Dial(wsURL, "", serverURL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frameType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := json.NewEncoder(conn).Encode(wsFrame{Type: frameType, Payload: raw}); err != nil {
		t.Fatalf("send %s frame: %v", frameType, err)
	}
}

func hello(t *testing.T, conn *websocket.Conn, userID int64, name string) {
	t.Helper()
	sendFrame(t, conn, "hello", helloPayload{UserID: userID, DisplayName: name})
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame wsFrame
	if err := json.NewDecoder(conn).Decode(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func waitForEvents(t *testing.T, handler *recordingHandler, n int) []transport.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		events := handler.snapshot()
		if len(events) >= n {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d events, got %v", n, handler.snapshot())
	return nil
}

func TestCommandFrameDeliversEvent(t *testing.T) {
	_, handler, serverURL := newTestGateway(t)
	conn := dialWS(t, serverURL)

	hello(t, conn, 7, "Alice")
	sendFrame(t, conn, "chat.command", commandPayload{ChatID: "chat-1", Name: "/add_me"})

	events := waitForEvents(t, handler, 1)
	command, ok := events[0].(transport.Command)
	if !ok {
		t.Fatalf("expected Command, got %T", events[0])
	}
	if command.Chat != "chat-1" || command.Name != "add_me" {
		t.Fatalf("unexpected command %+v", command)
	}
	if command.From.ID != 7 || command.From.DisplayName != "Alice" {
		t.Fatalf("unexpected sender %+v", command.From)
	}
}

func TestFramesBeforeHelloAreRejected(t *testing.T) {
	_, handler, serverURL := newTestGateway(t)
	conn := dialWS(t, serverURL)

	sendFrame(t, conn, "chat.command", commandPayload{ChatID: "chat-1", Name: "start"})

	frame := readFrame(t, conn)
	if frame.Type != "error" {
		t.Fatalf("expected error frame, got %s", frame.Type)
	}
	var payload wsErrorPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Code != "UNAUTHENTICATED" {
		t.Fatalf("expected UNAUTHENTICATED, got %s", payload.Code)
	}
	if len(handler.snapshot()) != 0 {
		t.Fatal("no events should have been delivered")
	}
}

func TestReplyAndPollAnswerFrames(t *testing.T) {
	_, handler, serverURL := newTestGateway(t)
	conn := dialWS(t, serverURL)

	hello(t, conn, 7, "Alice")
	sendFrame(t, conn, "chat.reply", replyPayload{Text: "a fancy rock", ReplyTo: 42})
	sendFrame(t, conn, "poll.answer", pollAnswerPayload{PollID: "poll-1", Option: 2})

	events := waitForEvents(t, handler, 2)
	reply, ok := events[0].(transport.Reply)
	if !ok || reply.Text != "a fancy rock" || reply.ReplyTo != 42 {
		t.Fatalf("unexpected reply event %+v", events[0])
	}
	answer, ok := events[1].(transport.PollAnswer)
	if !ok || answer.Poll != "poll-1" || answer.Option != 2 {
		t.Fatalf("unexpected poll answer event %+v", events[1])
	}
}

func TestSendUserReachesConnectedPeer(t *testing.T) {
	gateway, _, serverURL := newTestGateway(t)
	conn := dialWS(t, serverURL)
	hello(t, conn, 7, "Alice")

	var id domain.MessageID
	waitForCondition(t, func() bool {
		var err error
		id, err = gateway.SendUser(context.Background(), 7, "your word")
		return err == nil
	})

	frame := readFrame(t, conn)
	if frame.Type != "user.message" {
		t.Fatalf("expected user.message, got %s", frame.Type)
	}
	var payload messagePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.MessageID != int64(id) || payload.Body != "your word" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestSendUserToDisconnectedUserFails(t *testing.T) {
	gateway, _, _ := newTestGateway(t)

	if _, err := gateway.SendUser(context.Background(), 99, "hello"); err == nil {
		t.Fatal("expected an error for a disconnected user")
	}
}

func TestChatBroadcastReachesSubscribers(t *testing.T) {
	gateway, _, serverURL := newTestGateway(t)
	subscriber := dialWS(t, serverURL)
	outsider := dialWS(t, serverURL)

	hello(t, subscriber, 7, "Alice")
	hello(t, outsider, 8, "Bob")
	sendFrame(t, subscriber, "chat.join", joinPayload{ChatID: "chat-1"})

	waitForCondition(t, func() bool {
		gateway.mu.Lock()
		defer gateway.mu.Unlock()
		return len(gateway.chats["chat-1"]) == 1
	})

	if _, err := gateway.SendChat(context.Background(), "chat-1", "round over"); err != nil {
		t.Fatalf("send chat: %v", err)
	}

	frame := readFrame(t, subscriber)
	if frame.Type != "chat.message" {
		t.Fatalf("expected chat.message, got %s", frame.Type)
	}
}

func TestSendPollMintsDistinctIDs(t *testing.T) {
	gateway, _, _ := newTestGateway(t)
	ctx := context.Background()

	first, err := gateway.SendPoll(ctx, "chat-1", "which?", []string{"a", "b"})
	if err != nil {
		t.Fatalf("send poll: %v", err)
	}
	second, err := gateway.SendPoll(ctx, "chat-1", "which?", []string{"a", "b"})
	if err != nil {
		t.Fatalf("send poll: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("poll ids must be distinct, both %s", first.ID)
	}
	if first.MessageID == second.MessageID {
		t.Fatalf("message ids must be distinct, both %d", first.MessageID)
	}
}

func TestMalformedFramesEventuallyDisconnect(t *testing.T) {
	_, _, serverURL := newTestGateway(t)
	conn := dialWS(t, serverURL)

	for i := 0; i < maxDecodeErrorsPerConn; i++ {
		if _, err := conn.Write([]byte("not json\n")); err != nil {
			t.Fatalf("write garbage: %v", err)
		}
	}

	// The server closes after the error budget; subsequent reads fail once
	// the error frames are drained.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	decoder := json.NewDecoder(conn)
	for i := 0; ; i++ {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			return
		}
		if frame.Type != "error" {
			t.Fatalf("expected error frames, got %s", frame.Type)
		}
		if i > maxDecodeErrorsPerConn {
			t.Fatalf("connection survived %d error frames", i)
		}
	}
}

func waitForCondition(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}
