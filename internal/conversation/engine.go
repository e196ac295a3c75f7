package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HandlerFunc performs the work of one command. It receives the current
// state and returns the next one. Returning an error leaves the state
// unchanged. Returning the current state keeps the conversation in place.
type HandlerFunc func(ctx context.Context, current State) (State, error)

// TeardownFunc runs after a conversation reaches the terminal state and
// its session is removed.
type TeardownFunc func(ctx context.Context, key string)

type session struct {
	mu       sync.Mutex
	state    State
	timerGen int
	timer    *time.Timer
}

// Engine tracks live conversations keyed by string. All dispatches for one
// key are serialized under the session lock, so handlers observe a
// consistent state and transitions never interleave.
type Engine struct {
	machine  *Machine
	logger   *slog.Logger
	teardown TeardownFunc

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewEngine builds an engine over the given machine.
func NewEngine(machine *Machine, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		machine:  machine,
		logger:   logger,
		sessions: map[string]*session{},
	}
}

// OnTeardown registers a hook invoked after a conversation ends.
func (e *Engine) OnTeardown(fn TeardownFunc) {
	e.teardown = fn
}

// State reports the current state of a key's conversation.
func (e *Engine) State(key string) (State, bool) {
	e.mu.RLock()
	sess, ok := e.sessions[key]
	e.mu.RUnlock()
	if !ok {
		return "", false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state, true
}

// Dispatch runs cmd for the given key. A missing conversation is created
// only when cmd is the machine's entry command; otherwise
// ErrNoConversation is returned. Commands not accepted in the current
// state fail with ErrInvalidInState without invoking the handler. Any
// dispatch cancels the key's pending inactivity timer.
func (e *Engine) Dispatch(ctx context.Context, key string, cmd Command, handler HandlerFunc) error {
	sess, err := e.session(key, cmd)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	e.cancelTimerLocked(sess)

	if !e.machine.accepts(sess.state, cmd) {
		return ErrInvalidInState
	}

	next, err := handler(ctx, sess.state)
	if err != nil {
		return err
	}

	if next != sess.state {
		e.logger.Debug("conversation transition",
			"key", key, "command", string(cmd),
			"from", string(sess.state), "to", string(next))
		sess.state = next
	}

	if next == e.machine.terminal {
		e.remove(key)
		if e.teardown != nil {
			e.teardown(ctx, key)
		}
	}
	return nil
}

// SetTimeout arms an inactivity timer for key. When it fires with no
// intervening dispatch, fn runs on a fresh goroutine. A later dispatch or
// a newer timer invalidates the pending one; a stale timer never runs.
func (e *Engine) SetTimeout(key string, d time.Duration, fn func(ctx context.Context)) {
	e.mu.RLock()
	sess, ok := e.sessions[key]
	e.mu.RUnlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	e.cancelTimerLocked(sess)
	gen := sess.timerGen
	sess.timer = time.AfterFunc(d, func() {
		sess.mu.Lock()
		live := sess.timerGen == gen
		sess.mu.Unlock()
		if !live {
			return
		}
		fn(context.Background())
	})
}

func (e *Engine) session(key string, cmd Command) (*session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[key]
	if ok {
		return sess, nil
	}
	if cmd != e.machine.entry || e.machine.entry == "" {
		return nil, ErrNoConversation
	}
	sess = &session{state: e.machine.initial}
	e.sessions[key] = sess
	return sess, nil
}

func (e *Engine) remove(key string) {
	e.mu.Lock()
	delete(e.sessions, key)
	e.mu.Unlock()
}

// cancelTimerLocked requires sess.mu to be held.
func (e *Engine) cancelTimerLocked(sess *session) {
	sess.timerGen++
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
}
