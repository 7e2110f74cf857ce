package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"

	"github.com/Misacorp/leetbot/leetbot"
	"github.com/Misacorp/leetbot/leetbot/queue"
)

// MessageHandler turns gateway messages into queued inbound events. Only
// messages that could concern the game are published; the resolver makes the
// real call downstream.
func MessageHandler(b *leetbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if e.Message.Author.Bot || e.GuildID == nil {
			return
		}
		if !mayConcernGame(e.Message.Content) {
			return
		}

		event := queue.InboundEvent{
			ID:       e.MessageID.String(),
			GuildID:  e.GuildID.String(),
			UserID:   e.Message.Author.ID.String(),
			Username: e.Message.Author.Username,
			Content:  e.Message.Content,
			// The snowflake carries the platform's own creation instant,
			// which beats local receipt time for window classification.
			CreatedAtEpochMs: e.MessageID.Time().UnixMilli(),
			ChannelID:        e.ChannelID.String(),
			AvatarURL:        e.Message.Author.EffectiveAvatarURL(),
		}
		if e.Message.Member != nil && e.Message.Member.Nick != nil {
			event.DisplayName = *e.Message.Member.Nick
		}
		if bannerURL := e.Message.Author.BannerURL(); bannerURL != nil {
			event.BannerURL = *bannerURL
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := b.Publisher.Publish(ctx, queue.Envelope{
			Kind:  queue.KindMessage,
			Event: event,
		}); err != nil {
			slog.Error("Failed to publish inbound message",
				slog.String("type", "queue"),
				slog.String("message_id", event.ID),
				slog.Any("error", err),
			)
		}
	})
}

// mayConcernGame is a cheap prefilter so every chat line does not round-trip
// through the queue. Anything containing a token still goes through.
func mayConcernGame(content string) bool {
	c := strings.ToLower(content)
	return strings.Contains(c, "leet") || strings.Contains(c, "leeb")
}
