package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Misacorp/leetbot/leetbot/database/models"
)

// Outcome is the terminal state of one evaluator for one message.
type Outcome int

const (
	// OutcomeNotApplicable: content does not concern this evaluator.
	OutcomeNotApplicable Outcome = iota
	// OutcomeWrongWindow: content matched but the clock did not.
	OutcomeWrongWindow
	// OutcomeDuplicate: the user already scored today.
	OutcomeDuplicate
	// OutcomeScored: event persisted, profile upserted, reaction sent.
	OutcomeScored
	// OutcomeError: configuration or persistence failure.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotApplicable:
		return "not_applicable"
	case OutcomeWrongWindow:
		return "wrong_window"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeScored:
		return "scored"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Reactions for the non-success outcomes. Success reactions come from the
// guild's own emoji set.
const (
	ReactionMocking    = "\U0001F921" // 🤡
	ReactionAnger      = "\U0001F621" // 😡
	ReactionDismissive = "\U0001F644" // 🙄
	ReactionWarning    = "⚠️" // ⚠️
)

// Overrides let test and ops tooling force a controlled run without the
// wall-clock dependency. They are supplied per invocation, never global.
type Overrides struct {
	SkipUniquenessCheck   bool `json:"skipUniquenessCheck,omitempty"`
	AlwaysAllowLeet       bool `json:"alwaysAllowLeet,omitempty"`
	AlwaysAllowLeeb       bool `json:"alwaysAllowLeeb,omitempty"`
	AlwaysAllowFailedLeet bool `json:"alwaysAllowFailedLeet,omitempty"`
}

// InboundMessage is one chat message under evaluation.
type InboundMessage struct {
	ID          string
	GuildID     string
	UserID      string
	Username    string
	DisplayName string
	AvatarURL   string
	BannerURL   string
	ChannelID   string
	Content     string
	CreatedAt   time.Time
	Overrides   Overrides
}

// Result is one evaluator's terminal state for one message.
type Result struct {
	Evaluator   string
	Outcome     Outcome
	MessageType models.MessageType
	Err         error
}

type EventStore interface {
	Create(ctx context.Context, event *models.GameEvent) error
	HasScoredOnDay(ctx context.Context, guildID, userID string, at time.Time) (bool, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, profile *models.UserProfile) error
}

type GuildStore interface {
	Get(ctx context.Context, guildID string) (*models.GuildProfile, error)
}

type Notifier interface {
	// SendAcknowledgement reacts to the message with the symbol. The bool is
	// the platform's accepted/rejected answer; err is a transport failure.
	SendAcknowledgement(ctx context.Context, messageID, channelID, symbol string) (bool, error)
}

// Resolver runs the four evaluators over one message and carries out their
// side effects. Collaborators are injected; the resolver holds no ambient
// state beyond the target timezone.
type Resolver struct {
	events   EventStore
	users    ProfileStore
	guilds   GuildStore
	notifier Notifier
	loc      *time.Location
}

func NewResolver(events EventStore, users ProfileStore, guilds GuildStore, notifier Notifier, loc *time.Location) *Resolver {
	return &Resolver{
		events:   events,
		users:    users,
		guilds:   guilds,
		notifier: notifier,
		loc:      loc,
	}
}

type evaluator struct {
	name string
	run  func(ctx context.Context, msg InboundMessage, guild *models.GuildProfile) Result
}

// Resolve evaluates the message. The guild profile is a hard precondition;
// without it no evaluator can match emoji and the whole message fails.
// Evaluators are independent and run concurrently; content matching keeps
// their persisted outcomes mutually exclusive in practice.
func (r *Resolver) Resolve(ctx context.Context, msg InboundMessage) []Result {
	guild, err := r.guilds.Get(ctx, msg.GuildID)
	if err != nil {
		slog.Error("Guild profile unavailable, message not evaluated",
			slog.String("type", "game"),
			slog.String("guild_id", msg.GuildID),
			slog.String("message_id", msg.ID),
			slog.Any("error", err),
		)
		return []Result{{
			Evaluator: "precondition",
			Outcome:   OutcomeError,
			Err:       fmt.Errorf("guild profile: %w", err),
		}}
	}

	evaluators := []evaluator{
		{name: "leet", run: r.evaluateLeet},
		{name: "leeb", run: r.evaluateLeeb},
		{name: "failed_leet", run: r.evaluateFailedLeet},
		{name: "observer", run: r.evaluateObserver},
	}

	results := make([]Result, len(evaluators))
	var wg sync.WaitGroup
	for i, ev := range evaluators {
		wg.Add(1)
		go func(i int, ev evaluator) {
			defer wg.Done()
			results[i] = ev.run(ctx, msg, guild)
			results[i].Evaluator = ev.name
		}(i, ev)
	}
	wg.Wait()

	for _, res := range results {
		if res.Outcome == OutcomeNotApplicable {
			continue
		}
		attrs := []any{
			slog.String("type", "game"),
			slog.String("evaluator", res.Evaluator),
			slog.String("outcome", res.Outcome.String()),
			slog.String("message_id", msg.ID),
			slog.String("user_id", msg.UserID),
			slog.String("guild_id", msg.GuildID),
		}
		if res.Err != nil {
			slog.Error("Evaluator failed", append(attrs, slog.Any("error", res.Err))...)
		} else {
			slog.Info("Message evaluated", attrs...)
		}
	}
	return results
}

// evaluateLeet scores an exact "leet" posted in the 13:37 window. On a window
// mismatch it stays silent: the off-window and observer evaluators own the
// reactions for a mistimed leet.
func (r *Resolver) evaluateLeet(ctx context.Context, msg InboundMessage, guild *models.GuildProfile) Result {
	emoji, ok := guild.Emoji(TokenLeet)
	if !ok {
		return Result{Outcome: OutcomeError, Err: fmt.Errorf("%w: %s", ErrEmojiNotConfigured, TokenLeet)}
	}
	if !matchesToken(msg.Content, TokenLeet, emoji.Identifier) {
		return Result{Outcome: OutcomeNotApplicable}
	}

	if ClassifyWindow(msg.CreatedAt, r.loc) != WindowLeet && !msg.Overrides.AlwaysAllowLeet {
		return Result{Outcome: OutcomeWrongWindow}
	}

	return r.score(ctx, msg, models.MessageTypeLeet, emoji.Identifier)
}

// evaluateLeeb scores an exact "leeb" posted in the 13:38 window. Unlike the
// leet evaluator it mocks a window mismatch immediately; no other evaluator
// reacts to a mistimed leeb inside the game hour.
func (r *Resolver) evaluateLeeb(ctx context.Context, msg InboundMessage, guild *models.GuildProfile) Result {
	emoji, ok := guild.Emoji(TokenLeeb)
	if !ok {
		return Result{Outcome: OutcomeError, Err: fmt.Errorf("%w: %s", ErrEmojiNotConfigured, TokenLeeb)}
	}
	if !matchesToken(msg.Content, TokenLeeb, emoji.Identifier) {
		return Result{Outcome: OutcomeNotApplicable}
	}

	if ClassifyWindow(msg.CreatedAt, r.loc) != WindowLeeb && !msg.Overrides.AlwaysAllowLeeb {
		r.react(ctx, msg, ReactionMocking)
		return Result{Outcome: OutcomeWrongWindow}
	}

	return r.score(ctx, msg, models.MessageTypeLeeb, emoji.Identifier)
}

// evaluateFailedLeet catches "leet" (or anything containing the leet emoji)
// posted during the 13:38 window: a persisted, lower-status outcome.
func (r *Resolver) evaluateFailedLeet(ctx context.Context, msg InboundMessage, guild *models.GuildProfile) Result {
	emoji, ok := guild.Emoji(TokenLeet)
	if !ok {
		return Result{Outcome: OutcomeError, Err: fmt.Errorf("%w: %s", ErrEmojiNotConfigured, TokenLeet)}
	}
	if !containsToken(msg.Content, TokenLeet, emoji.Identifier) {
		return Result{Outcome: OutcomeNotApplicable}
	}

	if ClassifyWindow(msg.CreatedAt, r.loc) != WindowLeeb && !msg.Overrides.AlwaysAllowFailedLeet {
		return Result{Outcome: OutcomeWrongWindow}
	}

	return r.score(ctx, msg, models.MessageTypeFailedLeet, ReactionMocking)
}

// evaluateObserver fires when a game token is posted completely off schedule.
// Purely social: never persists, never consults uniqueness.
func (r *Resolver) evaluateObserver(ctx context.Context, msg InboundMessage, guild *models.GuildProfile) Result {
	if ClassifyWindow(msg.CreatedAt, r.loc) != WindowNone {
		return Result{Outcome: OutcomeNotApplicable}
	}

	leetEmoji, _ := guild.Emoji(TokenLeet)
	leebEmoji, _ := guild.Emoji(TokenLeeb)
	if !matchesToken(msg.Content, TokenLeet, leetEmoji.Identifier) &&
		!matchesToken(msg.Content, TokenLeeb, leebEmoji.Identifier) {
		return Result{Outcome: OutcomeNotApplicable}
	}

	r.react(ctx, msg, ReactionDismissive)
	return Result{Outcome: OutcomeWrongWindow}
}

// score runs the shared tail of the three persisting evaluators: uniqueness
// check, event append, profile upsert, success reaction.
func (r *Resolver) score(ctx context.Context, msg InboundMessage, messageType models.MessageType, successSymbol string) Result {
	if !msg.Overrides.SkipUniquenessCheck {
		scored, err := r.events.HasScoredOnDay(ctx, msg.GuildID, msg.UserID, msg.CreatedAt)
		if err != nil {
			return Result{Outcome: OutcomeError, MessageType: messageType, Err: fmt.Errorf("uniqueness check: %w", err)}
		}
		if scored {
			r.react(ctx, msg, ReactionAnger)
			return Result{Outcome: OutcomeDuplicate, MessageType: messageType}
		}
	}

	event := &models.GameEvent{
		ID:          msg.ID,
		GuildID:     msg.GuildID,
		UserID:      msg.UserID,
		MessageType: messageType,
		CreatedAt:   msg.CreatedAt,
	}
	if err := r.events.Create(ctx, event); err != nil {
		return Result{Outcome: OutcomeError, MessageType: messageType, Err: fmt.Errorf("persist event: %w", err)}
	}

	profile := &models.UserProfile{
		ID:          msg.UserID,
		GuildID:     msg.GuildID,
		Username:    msg.Username,
		DisplayName: msg.DisplayName,
		AvatarURL:   msg.AvatarURL,
		BannerURL:   msg.BannerURL,
	}
	if err := r.users.Upsert(ctx, profile); err != nil {
		return Result{Outcome: OutcomeError, MessageType: messageType, Err: fmt.Errorf("upsert profile: %w", err)}
	}

	r.react(ctx, msg, successSymbol)
	return Result{Outcome: OutcomeScored, MessageType: messageType}
}

// react sends exactly one acknowledgement for a decided outcome. A failed
// send never rolls anything back; it degrades to the generic warning
// reaction and a log line.
func (r *Resolver) react(ctx context.Context, msg InboundMessage, symbol string) {
	ok, err := r.notifier.SendAcknowledgement(ctx, msg.ID, msg.ChannelID, symbol)
	if err == nil && ok {
		return
	}

	slog.Warn("Acknowledgement failed",
		slog.String("type", "game"),
		slog.String("message_id", msg.ID),
		slog.String("symbol", symbol),
		slog.Any("error", err),
	)
	if symbol == ReactionWarning {
		return
	}
	if _, err := r.notifier.SendAcknowledgement(ctx, msg.ID, msg.ChannelID, ReactionWarning); err != nil {
		slog.Warn("Fallback acknowledgement failed",
			slog.String("type", "game"),
			slog.String("message_id", msg.ID),
			slog.Any("error", err),
		)
	}
}
