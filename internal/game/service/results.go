package service

import "github.com/louisbranch/fictionary/internal/game/domain"

// RoundResult is the outcome of one finished round, ready for rendering.
type RoundResult struct {
	// Round is the 1-based round number.
	Round int

	Word     string
	Official string

	// Tally attributes every recorded vote to a definition author or to
	// the official definition.
	Tally domain.Tally

	// Names maps participants to display names for rendering.
	Names map[domain.UserID]string

	// LastRound is set when no further questions remain.
	LastRound bool

	// Scores is the cumulative scoreboard after this round.
	Scores domain.Scoreboard
}

// Standings is the cumulative scoreboard with display names.
type Standings struct {
	Scores domain.Scoreboard
	Names  map[domain.UserID]string
}
