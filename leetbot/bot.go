package leetbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/Misacorp/leetbot/leetbot/database"
	"github.com/Misacorp/leetbot/leetbot/database/repositories"
	"github.com/Misacorp/leetbot/leetbot/game"
	"github.com/Misacorp/leetbot/leetbot/queue"
	"github.com/Misacorp/leetbot/leetbot/services"
)

func New(cfg Config, version string, commit string, loc *time.Location) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
		Location:  loc,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	Location  *time.Location

	DB    *database.DB // nil on the dynamodb backend
	Store database.Store

	EventRepository repositories.GameEventRepository
	UserRepository  repositories.UserRepository
	GuildRepository repositories.GuildRepository

	Resolver  *game.Resolver
	Runner    *game.Runner
	Publisher *queue.Publisher
	Consumer  *queue.Consumer

	GuildSync       *services.GuildSyncService
	ScoreboardImage *services.ScoreboardImageService
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMessages,
			gateway.IntentMessageContent,
			gateway.IntentGuildEmojisAndStickers,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Leetbot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the clock strike 13:37"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
