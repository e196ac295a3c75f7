// Package domain defines the core entities and rules of the fictionary game.
//
// The model is centered around a few concepts:
//
// # Room
//
// A Room is one isolated game instance, one per chat. It owns the set of
// participants, at most one running Game, and the live RoundState.
//
// # Game
//
// A Game is an ordered, immutable-once-created sequence of questions (word
// plus official definition), created exactly once per game start. Its length
// is the number of rounds. The Scoreboard accumulates per-round results.
//
// # RoundState
//
// RoundState is the replaceable state of the current round: submitted
// definitions, the shuffled poll option order, recorded votes, and the
// per-user private message ids used for reply correlation. Advancing a round
// replaces the whole value, so no round's votes or definitions leak into the
// next.
package domain
