// Package conversation runs per-key command conversations over a finite
// state machine. Keys identify independent conversations (one per chat);
// dispatches for the same key are linearized, different keys proceed in
// parallel.
package conversation

import "errors"

// State identifies one machine state.
type State string

// Command identifies one named command.
type Command string

var (
	// ErrNoConversation is returned when a command arrives for a key with
	// no active conversation and the command is not the entry command.
	ErrNoConversation = errors.New("no active conversation")

	// ErrInvalidInState is returned when a command is not accepted in the
	// conversation's current state.
	ErrInvalidInState = errors.New("command not valid in current state")
)

// Machine is the static transition table shared by all conversations.
// Validity is declared per state; the entry command may create a new
// conversation, and the fallback command is accepted in every state.
type Machine struct {
	initial  State
	terminal State
	entry    Command
	fallback Command
	valid    map[State]map[Command]bool
}

// NewMachine builds a machine with the given initial and terminal states.
func NewMachine(initial, terminal State) *Machine {
	return &Machine{
		initial:  initial,
		terminal: terminal,
		valid:    map[State]map[Command]bool{},
	}
}

// Entry declares the command that may start a new conversation.
func (m *Machine) Entry(cmd Command) {
	m.entry = cmd
}

// Fallback declares a command accepted in every state. Its handler is
// expected to drive the conversation to the terminal state.
func (m *Machine) Fallback(cmd Command) {
	m.fallback = cmd
}

// Allow accepts cmd while the conversation is in state.
func (m *Machine) Allow(state State, cmd Command) {
	commands, ok := m.valid[state]
	if !ok {
		commands = map[Command]bool{}
		m.valid[state] = commands
	}
	commands[cmd] = true
}

// AllowAll accepts cmd in each of the given states.
func (m *Machine) AllowAll(cmd Command, states ...State) {
	for _, state := range states {
		m.Allow(state, cmd)
	}
}

func (m *Machine) accepts(state State, cmd Command) bool {
	if cmd == m.fallback && m.fallback != "" {
		return true
	}
	return m.valid[state][cmd]
}
