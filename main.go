package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/Misacorp/leetbot/leetbot"
	"github.com/Misacorp/leetbot/leetbot/cache"
	"github.com/Misacorp/leetbot/leetbot/commands"
	"github.com/Misacorp/leetbot/leetbot/database"
	"github.com/Misacorp/leetbot/leetbot/database/repositories"
	"github.com/Misacorp/leetbot/leetbot/game"
	"github.com/Misacorp/leetbot/leetbot/handlers"
	"github.com/Misacorp/leetbot/leetbot/logger"
	"github.com/Misacorp/leetbot/leetbot/notifier"
	"github.com/Misacorp/leetbot/leetbot/queue"
	"github.com/Misacorp/leetbot/leetbot/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

const defaultTimezone = "Europe/Helsinki"

func main() {
	// Initialize custom logger
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Leetbot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := leetbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	timezone := cfg.Game.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Error("Unknown game timezone, refusing to start",
			slog.String("timezone", timezone),
			slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Game clock configured", slog.String("timezone", timezone))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	b := leetbot.New(*cfg, version, commit, loc)

	slog.Info("Initializing record store...", slog.String("backend", cfg.Store.Backend))
	storeStartTime := time.Now()

	switch cfg.Store.Backend {
	case "postgres":
		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			slog.Error("Database connection failed",
				slog.String("error", err.Error()),
				slog.Duration("attempted_for", time.Since(storeStartTime)))
			os.Exit(-1)
		}
		if err := db.InitializeSchema(ctx); err != nil {
			slog.Error("Failed to initialize database schema",
				slog.String("error", err.Error()),
				slog.Duration("attempted_for", time.Since(storeStartTime)))
			os.Exit(-1)
		}
		defer db.Close()
		b.DB = db
		b.Store = database.NewPostgresStore(db.BunDB())
	case "dynamodb", "":
		store, err := database.NewDynamoStore(ctx, cfg.Dynamo)
		if err != nil {
			slog.Error("DynamoDB client setup failed",
				slog.String("error", err.Error()))
			os.Exit(-1)
		}
		b.Store = store
	default:
		slog.Error("Unknown store backend", slog.String("backend", cfg.Store.Backend))
		os.Exit(-1)
	}

	slog.Info("Record store initialized successfully",
		slog.String("backend", cfg.Store.Backend),
		slog.Duration("took", time.Since(storeStartTime)))

	// Initialize repositories. Guild profiles sit behind the two-tier cache
	// because every inbound message reads one.
	sharedCache := cache.NewReadThrough(cache.NewMemory(), cache.NewDurable(b.Store))
	b.EventRepository = repositories.NewGameEventRepository(b.Store, loc)
	b.UserRepository = repositories.NewUserRepository(b.Store)
	b.GuildRepository = repositories.NewCachedGuildRepository(repositories.NewGuildRepository(b.Store), sharedCache)

	// Initialize queue publisher
	publisher, err := queue.NewPublisher(ctx, cfg.Queue)
	if err != nil {
		slog.Error("Queue publisher setup failed", slog.Any("error", err))
		os.Exit(-1)
	}
	b.Publisher = publisher

	b.GuildSync = services.NewGuildSyncService(b.GuildRepository)
	b.ScoreboardImage = services.NewScoreboardImageService()

	h := handler.New()

	// System commands
	h.Command("/version", commands.VersionHandler(b))

	// Game commands
	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", commands.LeaderboardHandler(b)))
	h.Command("/user-info", handlers.WrapWithLogging("user-info", commands.UserInfoHandler(b)))
	h.Autocomplete("/user-info", commands.UserInfoAutocomplete(b))

	if err = b.SetupBot(h,
		bot.NewListenerFunc(b.OnReady),
		handlers.MessageHandler(b),
		bot.NewListenerFunc(b.GuildSync.OnGuildReady),
		bot.NewListenerFunc(b.GuildSync.OnGuildUpdate),
		bot.NewListenerFunc(b.GuildSync.OnEmojisUpdate),
	); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	b.GuildSync.SetClient(b.Client)

	// The game pipeline needs the gateway client for reactions, so it comes
	// together after bot setup.
	b.Resolver = game.NewResolver(b.EventRepository, b.UserRepository, b.GuildRepository, notifier.New(b.Client), loc)
	b.Runner = game.NewRunner(b.Resolver, cfg.Queue.MaxConcurrent)

	consumer, err := queue.NewConsumer(ctx, cfg.Queue, b.Runner)
	if err != nil {
		slog.Error("Queue consumer setup failed", slog.Any("error", err))
		os.Exit(-1)
	}
	b.Consumer = consumer

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	go consumer.Start(consumerCtx)

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("error_details", fmt.Sprintf("%+v", err)),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	slog.Info("Leetbot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
}
