package domain

// RoundState is the live state of the current round. A new round replaces
// the value wholesale; the constructor always allocates fresh containers so
// no containers are ever shared across rounds.
type RoundState struct {
	QuestionIndex int

	// Descriptions holds each user's submitted definition, latest wins.
	Descriptions map[UserID]string

	// PollOptions is the shuffled option order of the built poll. Exactly
	// one entry carries a nil Author: the official definition.
	PollOptions []PollOption

	PollID        PollID
	PollMessageID MessageID

	// Votes maps voter to chosen option index, latest wins.
	Votes map[UserID]int

	// QuestionMessageIDs records, per user, the id of the private message
	// that delivered this round's word.
	QuestionMessageIDs map[UserID]MessageID

	// PollClosed flips exactly once when voting ends.
	PollClosed bool
}

// NewRoundState creates the state for the round at the given question index.
func NewRoundState(questionIndex int) *RoundState {
	return &RoundState{
		QuestionIndex:      questionIndex,
		Descriptions:       make(map[UserID]string),
		Votes:              make(map[UserID]int),
		QuestionMessageIDs: make(map[UserID]MessageID),
	}
}

// PollOption is one poll entry: the displayed text and its author. A nil
// Author marks the official definition.
type PollOption struct {
	Text   string
	Author *UserID
}

// SubmitDescription records a user's definition, overwriting any prior one.
func (s *RoundState) SubmitDescription(user UserID, text string) {
	s.Descriptions[user] = text
}

// RecordVote records a user's vote, overwriting any prior one.
func (s *RoundState) RecordVote(user UserID, option int) {
	s.Votes[user] = option
}

// DistinctVoters returns the number of users who have voted.
func (s *RoundState) DistinctVoters() int {
	return len(s.Votes)
}
