// Package bot is the front controller of the fictionary game: it maps
// inbound transport events onto conversation commands and renders the
// outcome back through the transport.
package bot

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/louisbranch/fictionary/internal/conversation"
	"github.com/louisbranch/fictionary/internal/errors"
	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/game/service"
	"github.com/louisbranch/fictionary/internal/i18n/catalog"
	"github.com/louisbranch/fictionary/internal/platform/timeouts"
	"github.com/louisbranch/fictionary/internal/transport"
)

// Conversation states, one set per room.
const (
	StateInit        conversation.State = "init"
	StateWaitAnswers conversation.State = "wait_answers"
	StateWaitVotes   conversation.State = "wait_votes"
	StateRoundFinish conversation.State = "round_finish"
	StateEnded       conversation.State = "ended"
)

// Public chat commands.
const (
	CmdStart     conversation.Command = "start"
	CmdAddMe     conversation.Command = "add_me"
	CmdRemoveMe  conversation.Command = "remove_me"
	CmdStartGame conversation.Command = "start_game"
	CmdVote      conversation.Command = "vote"
	CmdResults   conversation.Command = "results"
	CmdNext      conversation.Command = "next"
	CmdStopGame  conversation.Command = "stop_game"
)

// Internal commands driven by replies and poll answers.
const (
	cmdReply      conversation.Command = "reply"
	cmdPollAnswer conversation.Command = "poll_answer"
)

// Config carries the bot's collaborators.
type Config struct {
	Service   *service.Service
	Renderer  *catalog.Renderer
	Transport transport.Transport
	Logger    *slog.Logger

	// AnswerTimeout forces the vote when a round's answer phase stalls.
	// Defaults to timeouts.AnswerPhase.
	AnswerTimeout time.Duration

	// VoteTimeout forces the results when a poll stalls. Defaults to
	// timeouts.VotePhase.
	VoteTimeout time.Duration
}

// Bot consumes transport events and drives per-room games.
type Bot struct {
	engine    *conversation.Engine
	service   *service.Service
	renderer  *catalog.Renderer
	transport transport.Transport
	logger    *slog.Logger

	answerTimeout time.Duration
	voteTimeout   time.Duration
}

// New builds the bot and its conversation machine.
func New(cfg Config) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = timeouts.AnswerPhase
	}
	if cfg.VoteTimeout <= 0 {
		cfg.VoteTimeout = timeouts.VotePhase
	}

	machine := conversation.NewMachine(StateInit, StateEnded)
	machine.Entry(CmdStart)
	machine.Fallback(CmdStopGame)
	machine.Allow(StateInit, CmdStart)
	machine.AllowAll(CmdAddMe, StateInit, StateWaitAnswers, StateWaitVotes, StateRoundFinish)
	machine.AllowAll(CmdRemoveMe, StateInit, StateWaitAnswers, StateWaitVotes, StateRoundFinish)
	machine.Allow(StateInit, CmdStartGame)
	machine.Allow(StateWaitAnswers, cmdReply)
	machine.Allow(StateWaitAnswers, CmdVote)
	machine.Allow(StateWaitVotes, cmdPollAnswer)
	machine.Allow(StateWaitVotes, CmdResults)
	machine.Allow(StateRoundFinish, CmdNext)
	machine.Allow(StateRoundFinish, CmdResults)

	b := &Bot{
		engine:        conversation.NewEngine(machine, cfg.Logger),
		service:       cfg.Service,
		renderer:      cfg.Renderer,
		transport:     cfg.Transport,
		logger:        cfg.Logger,
		answerTimeout: cfg.AnswerTimeout,
		voteTimeout:   cfg.VoteTimeout,
	}
	b.engine.OnTeardown(func(ctx context.Context, key string) {
		err := b.service.RemoveRoom(ctx, domain.RoomID(key))
		if err != nil && !errors.IsCode(err, errors.CodeRoomNotFound) {
			b.logger.Error("room teardown failed", "room", key, "error", err)
		}
	})
	return b
}

// HandleEvent implements transport.Handler.
func (b *Bot) HandleEvent(ctx context.Context, event transport.Event) {
	switch ev := event.(type) {
	case transport.Command:
		b.handleCommand(ctx, ev)
	case transport.Reply:
		b.handleReply(ctx, ev)
	case transport.PollAnswer:
		b.handlePollAnswer(ctx, ev)
	}
}

func (b *Bot) handleCommand(ctx context.Context, ev transport.Command) {
	switch conversation.Command(ev.Name) {
	case CmdStart:
		b.dispatch(ctx, ev.Chat, CmdStart, b.greet(ev))
	case CmdAddMe:
		b.dispatch(ctx, ev.Chat, CmdAddMe, b.addMe(ev))
	case CmdRemoveMe:
		b.dispatch(ctx, ev.Chat, CmdRemoveMe, b.removeMe(ev))
	case CmdStartGame:
		b.dispatch(ctx, ev.Chat, CmdStartGame, b.startGame(ev))
	case CmdVote:
		b.dispatch(ctx, ev.Chat, CmdVote, b.openPoll(ev.Chat))
	case CmdResults:
		b.dispatch(ctx, ev.Chat, CmdResults, b.results(ev.Chat))
	case CmdNext:
		b.dispatch(ctx, ev.Chat, CmdNext, b.nextRound(ev.Chat))
	case CmdStopGame:
		b.dispatch(ctx, ev.Chat, CmdStopGame, b.stopGame(ev.Chat))
	default:
		b.logger.Debug("unknown command", "name", ev.Name, "chat", string(ev.Chat))
	}
}

// handleReply routes a private reply to its room via the correlation
// index. Stale and unknown reply targets are dropped; a plain private
// message that replies to nothing gets a usage hint.
func (b *Bot) handleReply(ctx context.Context, ev transport.Reply) {
	if ev.ReplyTo == 0 {
		b.tell(ctx, ev.From.ID, "bot.reply.required", nil)
		return
	}
	room, err := b.service.ResolveReply(ctx, ev.From.ID, ev.ReplyTo)
	if err != nil {
		b.logger.Debug("reply dropped", "user", int64(ev.From.ID), "message", int64(ev.ReplyTo), "error", err)
		return
	}
	b.dispatchQuiet(ctx, room, cmdReply, func(ctx context.Context, current conversation.State) (conversation.State, error) {
		if err := b.service.SubmitDescription(ctx, room, ev.From.ID, ev.Text); err != nil {
			return current, err
		}
		b.tell(ctx, ev.From.ID, "bot.answer.saved", nil)
		return current, nil
	})
}

// handlePollAnswer routes a poll answer to its room. The vote that makes
// every participant a voter finishes the round right here.
func (b *Bot) handlePollAnswer(ctx context.Context, ev transport.PollAnswer) {
	room, err := b.service.ResolvePoll(ctx, ev.Poll)
	if err != nil {
		b.logger.Debug("poll answer dropped", "poll", string(ev.Poll), "error", err)
		return
	}
	b.dispatchQuiet(ctx, room, cmdPollAnswer, func(ctx context.Context, current conversation.State) (conversation.State, error) {
		res, err := b.service.RecordVote(ctx, room, ev.From.ID, ev.Option)
		if errors.IsCode(err, errors.CodePollClosed) {
			return current, nil
		}
		if err != nil {
			return current, err
		}
		b.tell(ctx, ev.From.ID, "bot.vote.success", nil)
		if res.Completed {
			return b.finishRound(ctx, room, current), nil
		}
		return current, nil
	})
}

func (b *Bot) greet(ev transport.Command) conversation.HandlerFunc {
	return func(ctx context.Context, current conversation.State) (conversation.State, error) {
		err := b.service.CreateRoom(ctx, ev.Chat)
		if err != nil && !errors.IsCode(err, errors.CodeRoomAlreadyExists) {
			return current, err
		}
		b.say(ctx, ev.Chat, "bot.greeting", nil)
		return current, nil
	}
}

func (b *Bot) addMe(ev transport.Command) conversation.HandlerFunc {
	return func(ctx context.Context, current conversation.State) (conversation.State, error) {
		err := b.service.AddParticipant(ctx, ev.Chat, ev.From)
		if errors.IsCode(err, errors.CodeAlreadyMember) {
			b.say(ctx, ev.Chat, "bot.add_me.duplicate", map[string]string{"Name": ev.From.DisplayName})
			return current, nil
		}
		if err != nil {
			return current, err
		}
		b.say(ctx, ev.Chat, "bot.add_me.success", map[string]string{"Name": ev.From.DisplayName})
		return current, nil
	}
}

func (b *Bot) removeMe(ev transport.Command) conversation.HandlerFunc {
	return func(ctx context.Context, current conversation.State) (conversation.State, error) {
		res, err := b.service.RemoveParticipant(ctx, ev.Chat, ev.From.ID)
		if errors.IsCode(err, errors.CodeNotMember) {
			b.say(ctx, ev.Chat, "bot.remove_me.fail", map[string]string{"Name": ev.From.DisplayName})
			return current, nil
		}
		if err != nil {
			return current, err
		}
		b.say(ctx, ev.Chat, "bot.remove_me.success", map[string]string{"Name": ev.From.DisplayName})
		if res.RoomEmpty {
			return StateEnded, nil
		}
		if res.PollCompleted {
			return b.finishRound(ctx, ev.Chat, current), nil
		}
		return current, nil
	}
}

func (b *Bot) startGame(ev transport.Command) conversation.HandlerFunc {
	return func(ctx context.Context, current conversation.State) (conversation.State, error) {
		if err := b.service.StartGame(ctx, ev.Chat, ev.From.ID); err != nil {
			return current, err
		}
		b.say(ctx, ev.Chat, "bot.game.start.chat", nil)
		b.say(ctx, ev.Chat, "bot.game.start.hint", nil)
		return StateWaitAnswers, nil
	}
}

func (b *Bot) openPoll(room domain.RoomID) conversation.HandlerFunc {
	return func(ctx context.Context, current conversation.State) (conversation.State, error) {
		if err := b.service.BuildPoll(ctx, room); err != nil {
			return current, err
		}
		b.say(ctx, room, "bot.vote.ready", nil)
		return StateWaitVotes, nil
	}
}

func (b *Bot) results(room domain.RoomID) conversation.HandlerFunc {
	return func(ctx context.Context, current conversation.State) (conversation.State, error) {
		if current == StateWaitVotes {
			err := b.service.CloseVoting(ctx, room)
			if errors.IsCode(err, errors.CodePollClosed) {
				// Lost the race against the completing vote.
				return current, nil
			}
			if err != nil {
				return current, err
			}
			return b.finishRound(ctx, room, current), nil
		}

		standings, err := b.service.Standings(ctx, room)
		if err != nil {
			return current, err
		}
		b.sendStandings(ctx, room, standings)
		return current, nil
	}
}

func (b *Bot) nextRound(room domain.RoomID) conversation.HandlerFunc {
	return func(ctx context.Context, current conversation.State) (conversation.State, error) {
		err := b.service.AdvanceRound(ctx, room)
		if errors.IsCode(err, errors.CodeRoundsExhausted) {
			b.say(ctx, room, "bot.questions.ended", nil)
			b.say(ctx, room, "bot.game.end", nil)
			if standings, err := b.service.Standings(ctx, room); err == nil {
				b.sendStandings(ctx, room, standings)
			}
			return StateInit, nil
		}
		if err != nil {
			return current, err
		}
		return StateWaitAnswers, nil
	}
}

func (b *Bot) stopGame(room domain.RoomID) conversation.HandlerFunc {
	return func(ctx context.Context, current conversation.State) (conversation.State, error) {
		b.say(ctx, room, "bot.game.stopped", nil)
		return StateEnded, nil
	}
}

// finishRound runs the post-closure side effects. It is reached from
// exactly one actor per round: the completing vote, the completing leave,
// the /results closer or the vote timeout.
func (b *Bot) finishRound(ctx context.Context, room domain.RoomID, current conversation.State) conversation.State {
	res, err := b.service.FinishRound(ctx, room)
	if err != nil {
		b.logger.Error("finish round failed", "room", string(room), "error", err)
		return current
	}

	b.say(ctx, room, "bot.round.end.header", map[string]string{
		"Round": strconv.Itoa(res.Round),
		"Word":  res.Word,
	})
	b.say(ctx, room, "bot.round.end.official", map[string]string{
		"Votes": strconv.Itoa(res.Tally.Official),
	})
	for _, author := range sortedByVotes(res.Tally.ByAuthor) {
		b.say(ctx, room, "bot.round.end.line", map[string]string{
			"Name":  displayName(res.Names, author),
			"Votes": strconv.Itoa(res.Tally.ByAuthor[author]),
		})
	}
	b.say(ctx, room, "bot.round.next_hint", nil)
	return StateRoundFinish
}

func (b *Bot) sendStandings(ctx context.Context, room domain.RoomID, standings service.Standings) {
	for _, user := range sortedByVotes(standings.Scores) {
		b.say(ctx, room, "bot.score.line", map[string]string{
			"Name":   displayName(standings.Names, user),
			"Points": strconv.Itoa(standings.Scores[user]),
		})
	}
}

// dispatch runs one public chat command and re-arms the phase timer for
// whatever state the room ends up in. Engine rejections are policy
// rejections from the typing user's point of view and are surfaced to
// the chat.
func (b *Bot) dispatch(ctx context.Context, room domain.RoomID, cmd conversation.Command, handler conversation.HandlerFunc) {
	err := b.engine.Dispatch(ctx, string(room), cmd, handler)
	switch {
	case err == nil:
	case stderrors.Is(err, conversation.ErrNoConversation):
		b.surface(ctx, room, errors.New(errors.CodeRoomNotFound))
	case stderrors.Is(err, conversation.ErrInvalidInState):
		b.surface(ctx, room, errors.New(errors.CodeInvalidInState))
	default:
		b.surface(ctx, room, err)
	}
	b.armTimer(ctx, room)
}

// dispatchQuiet runs a command nobody typed: a correlated reply or poll
// answer, or a phase timer. An engine rejection means the event arrived
// too late for its round and is dropped without a user message.
func (b *Bot) dispatchQuiet(ctx context.Context, room domain.RoomID, cmd conversation.Command, handler conversation.HandlerFunc) {
	err := b.engine.Dispatch(ctx, string(room), cmd, handler)
	switch {
	case err == nil:
	case stderrors.Is(err, conversation.ErrNoConversation),
		stderrors.Is(err, conversation.ErrInvalidInState):
		b.logger.Debug("event dropped", "room", string(room), "command", string(cmd), "error", err)
		return
	default:
		b.surface(ctx, room, err)
	}
	b.armTimer(ctx, room)
}

// armTimer keeps the active phase bounded: a stalled answer phase forces
// the vote, a stalled poll forces the results.
func (b *Bot) armTimer(ctx context.Context, room domain.RoomID) {
	state, ok := b.engine.State(string(room))
	if !ok {
		return
	}
	switch state {
	case StateWaitAnswers:
		b.engine.SetTimeout(string(room), b.answerTimeout, func(ctx context.Context) {
			b.forceVote(ctx, room)
		})
	case StateWaitVotes:
		b.engine.SetTimeout(string(room), b.voteTimeout, func(ctx context.Context) {
			b.forceResults(ctx, room)
		})
	}
}

// forceVote closes a stalled answer phase. The timeout notice is sent
// inside the dispatched handler so a timer that lost the race against a
// user command has no visible effect.
func (b *Bot) forceVote(ctx context.Context, room domain.RoomID) {
	b.dispatchQuiet(ctx, room, CmdVote, func(ctx context.Context, current conversation.State) (conversation.State, error) {
		b.say(ctx, room, "bot.timeout.answers", nil)
		return b.openPoll(room)(ctx, current)
	})
}

// forceResults closes a stalled poll. The results command is also valid
// in round_finish, so the handler re-checks the phase: a stale timer
// must not dump standings after the round already ended.
func (b *Bot) forceResults(ctx context.Context, room domain.RoomID) {
	b.dispatchQuiet(ctx, room, CmdResults, func(ctx context.Context, current conversation.State) (conversation.State, error) {
		if current != StateWaitVotes {
			return current, nil
		}
		b.say(ctx, room, "bot.timeout.votes", nil)
		return b.results(room)(ctx, current)
	})
}

// surface reports a failed command back to the chat in the user's locale.
// Collaborator failures are logged as errors too; they indicate an
// operational problem, not a user mistake.
func (b *Bot) surface(ctx context.Context, room domain.RoomID, err error) {
	code := errors.GetCode(err)
	if code.Severity() == errors.SeverityCollaborator {
		b.logger.Error("command failed", "room", string(room), "code", string(code), "error", err)
	}
	message, ok := errors.UserMessage(err, b.renderer.Locale())
	if !ok {
		b.logger.Error("command failed", "room", string(room), "error", err)
		return
	}
	if _, sendErr := b.transport.SendChat(ctx, room, message); sendErr != nil {
		b.logger.Error("send failed", "room", string(room), "error", sendErr)
	}
}

func (b *Bot) say(ctx context.Context, room domain.RoomID, key string, params map[string]string) {
	text, err := b.renderer.Render(key, params)
	if err != nil {
		b.logger.Error("render failed", "key", key, "error", err)
		return
	}
	if _, err := b.transport.SendChat(ctx, room, text); err != nil {
		b.logger.Error("send failed", "room", string(room), "key", key, "error", err)
	}
}

func (b *Bot) tell(ctx context.Context, user domain.UserID, key string, params map[string]string) {
	text, err := b.renderer.Render(key, params)
	if err != nil {
		b.logger.Error("render failed", "key", key, "error", err)
		return
	}
	if _, err := b.transport.SendUser(ctx, user, text); err != nil {
		b.logger.Warn("private send failed", "user", int64(user), "key", key, "error", err)
	}
}

// displayName resolves a user's name for rendering. Departed players can
// still earn votes, so a missing name falls back to the numeric id.
func displayName(names map[domain.UserID]string, user domain.UserID) string {
	if name := names[user]; name != "" {
		return name
	}
	return strconv.FormatInt(int64(user), 10)
}

func sortedByVotes(counts map[domain.UserID]int) []domain.UserID {
	out := make([]domain.UserID, 0, len(counts))
	for user := range counts {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
