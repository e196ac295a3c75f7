package domain

// Tally is the authorship-attributed vote count of one round. ByAuthor
// includes every current participant, zero-filled, plus any former
// participant who still authored a voted-for option. Votes for the official
// definition accumulate in Official.
type Tally struct {
	ByAuthor map[UserID]int
	Official int
}

// Total returns the number of votes the tally accounts for.
func (t Tally) Total() int {
	sum := t.Official
	for _, votes := range t.ByAuthor {
		sum += votes
	}
	return sum
}

// CountVotes resolves every recorded vote through the poll option order and
// attributes it to the option's author.
func CountVotes(participants map[UserID]User, options []PollOption, votes map[UserID]int) Tally {
	tally := Tally{ByAuthor: make(map[UserID]int, len(participants))}
	for id := range participants {
		tally.ByAuthor[id] = 0
	}
	for _, option := range votes {
		if option < 0 || option >= len(options) {
			continue
		}
		author := options[option].Author
		if author == nil {
			tally.Official++
			continue
		}
		tally.ByAuthor[*author]++
	}
	return tally
}

// Scoreboard accumulates vote counts across rounds.
type Scoreboard map[UserID]int

// NewScoreboard creates an empty scoreboard.
func NewScoreboard() Scoreboard {
	return make(Scoreboard)
}

// AddRound folds one round's tally into the scoreboard. Every vote an
// author's definition attracted is one point.
func (s Scoreboard) AddRound(tally Tally) {
	for author, votes := range tally.ByAuthor {
		s[author] += votes
	}
}
