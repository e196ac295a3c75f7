package domain

import "errors"

// ErrNoQuestions indicates a game cannot be built from an empty word list.
var ErrNoQuestions = errors.New("a game needs at least one question")

// Question pairs a secret word with its official definition.
type Question struct {
	Word       string
	Definition string
}

// Game is an ordered, immutable-once-created sequence of questions. The
// supplied list is consumed verbatim, order preserved.
type Game struct {
	questions  []Question
	Scoreboard Scoreboard
}

// NewGame builds a game from the corpus-provided question list.
func NewGame(questions []Question) (*Game, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	owned := make([]Question, len(questions))
	copy(owned, questions)
	return &Game{
		questions:  owned,
		Scoreboard: NewScoreboard(),
	}, nil
}

// Rounds returns the number of rounds in the game.
func (g *Game) Rounds() int {
	return len(g.questions)
}

// Question returns the question at the given round index.
func (g *Game) Question(idx int) Question {
	return g.questions[idx]
}
