// Package services holds the supporting services around the game core:
// guild profile sync and scoreboard image rendering.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"

	"github.com/Misacorp/leetbot/leetbot/database/models"
	"github.com/Misacorp/leetbot/leetbot/database/repositories"
)

// GuildSyncService keeps the stored GuildProfile (name, icon, emoji set)
// fresh. The resolver treats a missing profile as a hard precondition
// failure, so every guild the bot can see gets synced on ready and on any
// guild or emoji update.
type GuildSyncService struct {
	client bot.Client
	guilds repositories.GuildRepository
}

func NewGuildSyncService(guilds repositories.GuildRepository) *GuildSyncService {
	return &GuildSyncService{guilds: guilds}
}

func (s *GuildSyncService) SetClient(client bot.Client) {
	s.client = client
}

func (s *GuildSyncService) OnGuildReady(e *events.GuildReady) {
	s.sync(e.Guild)
}

func (s *GuildSyncService) OnGuildUpdate(e *events.GuildUpdate) {
	s.sync(e.Guild)
}

func (s *GuildSyncService) OnEmojisUpdate(e *events.EmojisUpdate) {
	guild, ok := s.client.Caches().Guild(e.GuildID)
	if !ok {
		return
	}
	s.sync(guild)
}

func (s *GuildSyncService) sync(guild discord.Guild) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := s.buildProfile(ctx, guild)
	if err != nil {
		slog.Error("Failed to build guild profile",
			slog.String("type", "sys"),
			slog.String("guild_id", guild.ID.String()),
			slog.Any("error", err),
		)
		return
	}

	if err := s.guilds.Upsert(ctx, profile); err != nil {
		slog.Error("Failed to store guild profile",
			slog.String("type", "sys"),
			slog.String("guild_id", guild.ID.String()),
			slog.Any("error", err),
		)
		return
	}

	slog.Info("Guild profile synced",
		slog.String("type", "sys"),
		slog.String("guild_id", guild.ID.String()),
		slog.String("guild_name", guild.Name),
		slog.Int("emojis", len(profile.Emojis)),
	)
}

func (s *GuildSyncService) buildProfile(ctx context.Context, guild discord.Guild) (*models.GuildProfile, error) {
	emojis, err := s.client.Rest().GetEmojis(guild.ID, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild emojis: %w", err)
	}

	profile := &models.GuildProfile{
		ID:   guild.ID.String(),
		Name: guild.Name,
	}
	if iconURL := guild.IconURL(); iconURL != nil {
		profile.IconURL = *iconURL
	}

	for _, emoji := range emojis {
		profile.Emojis = append(profile.Emojis, models.Emoji{
			Name:       emoji.Name,
			Identifier: emojiIdentifier(emoji),
			ImageURL:   fmt.Sprintf("https://cdn.discordapp.com/emojis/%s.png", emoji.ID),
		})
	}
	return profile, nil
}

// emojiIdentifier builds the message form the content matcher compares
// against.
func emojiIdentifier(emoji discord.Emoji) string {
	if emoji.Animated {
		return fmt.Sprintf("<a:%s:%s>", emoji.Name, emoji.ID)
	}
	return fmt.Sprintf("<:%s:%s>", emoji.Name, emoji.ID)
}
