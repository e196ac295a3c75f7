// Package service orchestrates fictionary games: room membership, round
// flow, poll construction and vote tallying. It owns no transport or
// storage details beyond the interfaces it is handed.
package service

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/louisbranch/fictionary/internal/corpus"
	"github.com/louisbranch/fictionary/internal/errors"
	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/game/storage"
	"github.com/louisbranch/fictionary/internal/i18n/catalog"
	"github.com/louisbranch/fictionary/internal/random"
	"github.com/louisbranch/fictionary/internal/transport"
)

// DefaultRounds is the number of words a game runs when not configured.
const DefaultRounds = 5

// Policy tunes edge-case behavior. The zero value is the default policy:
// a leaving participant's vote is revoked.
type Policy struct {
	// KeepVoteOnLeave retains a leaver's recorded vote instead of
	// deleting it.
	KeepVoteOnLeave bool
}

// Config carries the service's collaborators.
type Config struct {
	Rooms     storage.RoomStore
	Index     storage.CorrelationIndex
	Transport transport.Transport
	Corpus    corpus.Provider
	Renderer  *catalog.Renderer
	Logger    *slog.Logger

	// Rounds is the number of questions per game. Defaults to
	// DefaultRounds.
	Rounds int

	// Shuffle randomizes poll option order. Defaults to a seeded
	// rand.Shuffle. Injected by tests for deterministic polls.
	Shuffle func(n int, swap func(i, j int))

	Policy Policy
}

// Service implements the game operations invoked by the bot front
// controller. All state mutations happen inside RoomStore.Update, which
// serializes them per room.
type Service struct {
	rooms     storage.RoomStore
	index     storage.CorrelationIndex
	transport transport.Transport
	corpus    corpus.Provider
	renderer  *catalog.Renderer
	logger    *slog.Logger
	rounds    int
	shuffle   func(n int, swap func(i, j int))
	policy    Policy
}

// New builds a service from the config, filling in defaults.
func New(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultRounds
	}
	if cfg.Shuffle == nil {
		cfg.Shuffle = seededShuffle()
	}
	return &Service{
		rooms:     cfg.Rooms,
		index:     cfg.Index,
		transport: cfg.Transport,
		corpus:    cfg.Corpus,
		renderer:  cfg.Renderer,
		logger:    cfg.Logger,
		rounds:    cfg.Rounds,
		shuffle:   cfg.Shuffle,
		policy:    cfg.Policy,
	}
}

func seededShuffle() func(n int, swap func(i, j int)) {
	seed, err := random.NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func(n int, swap func(i, j int)) {
		mu.Lock()
		defer mu.Unlock()
		rng.Shuffle(n, swap)
	}
}

// CreateRoom registers a new room keyed by its chat.
func (s *Service) CreateRoom(ctx context.Context, id domain.RoomID) error {
	err := s.rooms.Create(ctx, id)
	if err == storage.ErrAlreadyExists {
		return errors.New(errors.CodeRoomAlreadyExists).WithMeta("Room", string(id))
	}
	return err
}

// RemoveRoom deletes a room and everything in it.
func (s *Service) RemoveRoom(ctx context.Context, id domain.RoomID) error {
	err := s.rooms.Delete(ctx, id)
	if err == storage.ErrNotFound {
		return errors.New(errors.CodeRoomNotFound).WithMeta("Room", string(id))
	}
	return err
}

// AddParticipant joins a user to a room. Joining mid-game is allowed; the
// user takes part starting with the next word they receive.
func (s *Service) AddParticipant(ctx context.Context, id domain.RoomID, user domain.User) error {
	return s.update(ctx, id, func(room *domain.Room) error {
		if err := room.AddParticipant(user); err != nil {
			return errors.New(errors.CodeAlreadyMember).WithMeta("Name", user.DisplayName)
		}
		return nil
	})
}

// LeaveResult reports the consequences of a participant leaving.
type LeaveResult struct {
	// RoomEmpty is set when the last participant left.
	RoomEmpty bool

	// PollCompleted is set when the departure made the open poll
	// complete: every remaining participant has voted. The caller must
	// finish the round, exactly once.
	PollCompleted bool
}

// RemoveParticipant removes a user from a room. Under the default policy
// the leaver's recorded vote is revoked, and the all-voted condition is
// re-checked against the shrunken participant set.
func (s *Service) RemoveParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) (LeaveResult, error) {
	var res LeaveResult
	err := s.update(ctx, id, func(room *domain.Room) error {
		if err := room.RemoveParticipant(user); err != nil {
			return errors.New(errors.CodeNotMember)
		}
		res.RoomEmpty = len(room.Participants) == 0

		round := room.Round
		if round == nil || round.PollClosed || len(round.PollOptions) == 0 {
			return nil
		}
		if !s.policy.KeepVoteOnLeave {
			delete(round.Votes, user)
		}
		if !res.RoomEmpty && round.DistinctVoters() >= len(room.Participants) {
			round.PollClosed = true
			res.PollCompleted = true
		}
		return nil
	})
	return res, err
}

// StartGame draws a fresh word list from the corpus, installs a new game
// and sends the first word to every participant in private. The caller
// must be a participant. A corpus failure leaves the room untouched.
func (s *Service) StartGame(ctx context.Context, id domain.RoomID, caller domain.UserID) error {
	err := s.update(ctx, id, func(room *domain.Room) error {
		if !room.HasParticipant(caller) {
			return errors.New(errors.CodeUnknownUser)
		}
		return nil
	})
	if err != nil {
		return err
	}

	questions, err := s.corpus.Supply(ctx, s.rounds)
	if err != nil {
		return errors.Wrap(errors.CodeProviderUnavailable, err)
	}
	game, err := domain.NewGame(questions)
	if err != nil {
		return errors.Wrap(errors.CodeProviderUnavailable, err)
	}

	err = s.update(ctx, id, func(room *domain.Room) error {
		if !room.HasParticipant(caller) {
			return errors.New(errors.CodeUnknownUser)
		}
		room.Game = game
		room.Round = domain.NewRoundState(0)
		return nil
	})
	if err != nil {
		return err
	}

	return s.sendRoundWords(ctx, id)
}

// SubmitDescription stores a participant's made-up definition for the
// current round, overwriting any earlier one.
func (s *Service) SubmitDescription(ctx context.Context, id domain.RoomID, user domain.UserID, text string) error {
	return s.update(ctx, id, func(room *domain.Room) error {
		if room.Game == nil || room.Round == nil {
			return errors.New(errors.CodeRoomNoGame)
		}
		if !room.HasParticipant(user) {
			return errors.New(errors.CodeUnknownUser)
		}
		if room.Round.PollClosed || len(room.Round.PollOptions) > 0 {
			return errors.New(errors.CodePollClosed)
		}
		room.Round.SubmitDescription(user, text)
		return nil
	})
}

// BuildPoll assembles the anonymized poll for the current round, sends it
// and records the poll correlation. It fails with CodeNoSubmissions when
// nobody sent a definition yet.
func (s *Service) BuildPoll(ctx context.Context, id domain.RoomID) error {
	var (
		word    string
		options []domain.PollOption
	)
	err := s.update(ctx, id, func(room *domain.Room) error {
		if room.Game == nil || room.Round == nil {
			return errors.New(errors.CodeRoomNoGame)
		}
		question := room.Game.Question(room.Round.QuestionIndex)
		built, err := domain.BuildPollOptions(question.Definition, room.Round.Descriptions, s.shuffle)
		if err != nil {
			return errors.Wrap(errors.CodeNoSubmissions, err)
		}
		word = question.Word
		options = built
		return nil
	})
	if err != nil {
		return err
	}

	title, err := s.renderer.Render("bot.poll.question", map[string]string{"Word": word})
	if err != nil {
		return err
	}
	texts := make([]string, len(options))
	for i, option := range options {
		texts[i] = option.Text
	}
	poll, err := s.transport.SendPoll(ctx, id, title, texts)
	if err != nil {
		return err
	}

	err = s.update(ctx, id, func(room *domain.Room) error {
		if room.Round == nil {
			return errors.New(errors.CodeRoomNoGame)
		}
		room.Round.PollOptions = options
		room.Round.PollID = poll.ID
		room.Round.PollMessageID = poll.MessageID
		return nil
	})
	if err != nil {
		return err
	}
	return s.index.PutPoll(ctx, poll.ID, id)
}

// VoteResult reports whether a vote completed the poll.
type VoteResult struct {
	// Completed is set for exactly one vote per round: the one that made
	// every participant a voter. That caller finishes the round.
	Completed bool
}

// RecordVote stores a participant's vote. The completion check and the
// poll-closed flip happen in the same room update, so concurrent last
// votes elect exactly one winner.
func (s *Service) RecordVote(ctx context.Context, id domain.RoomID, user domain.UserID, option int) (VoteResult, error) {
	var res VoteResult
	err := s.update(ctx, id, func(room *domain.Room) error {
		round := room.Round
		if round == nil || len(round.PollOptions) == 0 {
			return errors.New(errors.CodePollNotOpen)
		}
		if round.PollClosed {
			return errors.New(errors.CodePollClosed)
		}
		if !room.HasParticipant(user) {
			return errors.New(errors.CodeUnknownUser)
		}
		if option < 0 || option >= len(round.PollOptions) {
			return errors.New(errors.CodeInvalidInState).WithMeta("Option", strconv.Itoa(option))
		}
		round.RecordVote(user, option)
		if round.DistinctVoters() >= len(room.Participants) {
			round.PollClosed = true
			res.Completed = true
		}
		return nil
	})
	return res, err
}

// CloseVoting force-closes the open poll, for the manual /results path and
// the vote timeout. Exactly one closer succeeds; late callers get
// CodePollClosed.
func (s *Service) CloseVoting(ctx context.Context, id domain.RoomID) error {
	return s.update(ctx, id, func(room *domain.Room) error {
		round := room.Round
		if round == nil || len(round.PollOptions) == 0 {
			return errors.New(errors.CodePollNotOpen)
		}
		if round.PollClosed {
			return errors.New(errors.CodePollClosed)
		}
		round.PollClosed = true
		return nil
	})
}

// FinishRound tallies the closed poll, folds it into the scoreboard and
// stops the transport poll. Only the single actor that closed the poll may
// call it for a given round.
func (s *Service) FinishRound(ctx context.Context, id domain.RoomID) (RoundResult, error) {
	var (
		result      RoundResult
		pollMessage domain.MessageID
	)
	err := s.update(ctx, id, func(room *domain.Room) error {
		round := room.Round
		if room.Game == nil || round == nil || len(round.PollOptions) == 0 {
			return errors.New(errors.CodePollNotOpen)
		}
		if !round.PollClosed {
			return errors.New(errors.CodePollNotOpen)
		}

		tally := domain.CountVotes(room.Participants, round.PollOptions, round.Votes)
		room.Game.Scoreboard.AddRound(tally)

		question := room.Game.Question(round.QuestionIndex)
		result = RoundResult{
			Round:     round.QuestionIndex + 1,
			Word:      question.Word,
			Official:  question.Definition,
			Tally:     tally,
			Names:     participantNames(room),
			LastRound: round.QuestionIndex+1 >= room.Game.Rounds(),
			Scores:    copyScores(room.Game.Scoreboard),
		}
		pollMessage = round.PollMessageID
		return nil
	})
	if err != nil {
		return RoundResult{}, err
	}

	if err := s.transport.StopPoll(ctx, id, pollMessage); err != nil {
		s.logger.Warn("stop poll failed", "room", string(id), "error", err)
	}
	return result, nil
}

// AdvanceRound moves the room to the next question and sends the new word
// to every participant. It fails with CodeRoundsExhausted when the word
// list is spent.
func (s *Service) AdvanceRound(ctx context.Context, id domain.RoomID) error {
	err := s.update(ctx, id, func(room *domain.Room) error {
		if room.Game == nil || room.Round == nil {
			return errors.New(errors.CodeRoomNoGame)
		}
		next := room.Round.QuestionIndex + 1
		if next >= room.Game.Rounds() {
			return errors.New(errors.CodeRoundsExhausted)
		}
		room.Round = domain.NewRoundState(next)
		return nil
	})
	if err != nil {
		return err
	}
	return s.sendRoundWords(ctx, id)
}

// Standings returns the current scoreboard with display names.
func (s *Service) Standings(ctx context.Context, id domain.RoomID) (Standings, error) {
	var standings Standings
	err := s.update(ctx, id, func(room *domain.Room) error {
		if room.Game == nil {
			return errors.New(errors.CodeRoomNoGame)
		}
		standings = Standings{
			Scores: copyScores(room.Game.Scoreboard),
			Names:  participantNames(room),
		}
		return nil
	})
	return standings, err
}

// ResolveReply maps a user's reply target message to its room. Stale or
// unknown correlations fail with CodeCorrelationNotFound.
func (s *Service) ResolveReply(ctx context.Context, user domain.UserID, message domain.MessageID) (domain.RoomID, error) {
	room, err := s.index.RoomByMessage(ctx, user, message)
	if err == storage.ErrNotFound {
		return "", errors.New(errors.CodeCorrelationNotFound)
	}
	return room, err
}

// ResolvePoll maps a poll id to its room.
func (s *Service) ResolvePoll(ctx context.Context, poll domain.PollID) (domain.RoomID, error) {
	room, err := s.index.RoomByPoll(ctx, poll)
	if err == storage.ErrNotFound {
		return "", errors.New(errors.CodeCorrelationNotFound)
	}
	return room, err
}

// sendRoundWords sends the current round's word to every participant in
// private and records each message id for reply correlation. Individual
// send failures are logged and skipped so one absent user does not stall
// the round.
func (s *Service) sendRoundWords(ctx context.Context, id domain.RoomID) error {
	var (
		word  string
		round int
		index int
		users []domain.UserID
	)
	err := s.update(ctx, id, func(room *domain.Room) error {
		if room.Game == nil || room.Round == nil {
			return errors.New(errors.CodeRoomNoGame)
		}
		question := room.Game.Question(room.Round.QuestionIndex)
		word = question.Word
		index = room.Round.QuestionIndex
		round = index + 1
		users = make([]domain.UserID, 0, len(room.Participants))
		for user := range room.Participants {
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// A broken template is a logged defect, not a reason to tear down a
	// game that is already installed. The sends are skipped.
	text, err := s.renderer.Render("bot.round.word", map[string]string{
		"Round": strconv.Itoa(round),
		"Word":  word,
	})
	if err != nil {
		s.logger.Error("word template render failed", "room", string(id), "error", err)
		return nil
	}
	hint, err := s.renderer.Render("bot.round.reply_hint", nil)
	if err != nil {
		s.logger.Error("hint template render failed", "room", string(id), "error", err)
		return nil
	}
	body := text + "\n" + hint

	sent := make(map[domain.UserID]domain.MessageID, len(users))
	for _, user := range users {
		message, err := s.transport.SendUser(ctx, user, body)
		if err != nil {
			s.logger.Warn("word delivery failed",
				"room", string(id), "user", int64(user), "error", err)
			continue
		}
		sent[user] = message
		if err := s.index.PutMessage(ctx, user, message, id); err != nil {
			return err
		}
	}

	// Record ids only if the room is still on the same round.
	return s.update(ctx, id, func(room *domain.Room) error {
		if room.Round == nil || room.Round.QuestionIndex != index {
			return nil
		}
		for user, message := range sent {
			room.Round.QuestionMessageIDs[user] = message
		}
		return nil
	})
}

func (s *Service) update(ctx context.Context, id domain.RoomID, fn func(*domain.Room) error) error {
	err := s.rooms.Update(ctx, id, fn)
	if err == storage.ErrNotFound {
		return errors.New(errors.CodeRoomNotFound).WithMeta("Room", string(id))
	}
	return err
}

func participantNames(room *domain.Room) map[domain.UserID]string {
	names := make(map[domain.UserID]string, len(room.Participants))
	for id, user := range room.Participants {
		names[id] = user.DisplayName
	}
	return names
}

func copyScores(scores domain.Scoreboard) domain.Scoreboard {
	out := make(domain.Scoreboard, len(scores))
	for user, points := range scores {
		out[user] = points
	}
	return out
}
