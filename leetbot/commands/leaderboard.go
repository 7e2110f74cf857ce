package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/Misacorp/leetbot/leetbot"
	"github.com/Misacorp/leetbot/leetbot/analytics"
	"github.com/Misacorp/leetbot/leetbot/database/models"
)

const entriesPerPage = 10

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "🏆 View the guild's rankings",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "type",
			Description: "Which result type to rank",
			Required:    true,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "LEET", Value: string(models.MessageTypeLeet)},
				{Name: "LEEB", Value: string(models.MessageTypeLeeb)},
				{Name: "Failed LEET", Value: string(models.MessageTypeFailedLeet)},
			},
		},
		discord.ApplicationCommandOptionString{
			Name:        "window",
			Description: "Time window to rank over (default: all time)",
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "This week", Value: string(analytics.TimeWindowThisWeek)},
				{Name: "This month", Value: string(analytics.TimeWindowThisMonth)},
				{Name: "This year", Value: string(analytics.TimeWindowThisYear)},
				{Name: "All time", Value: string(analytics.TimeWindowAllTime)},
			},
		},
		discord.ApplicationCommandOptionBool{
			Name:        "image",
			Description: "Render the top of the board as an image",
		},
	},
}

func LeaderboardHandler(b *leetbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return e.CreateMessage(discord.MessageCreate{
				Content: "This command only works in a server",
				Flags:   discord.MessageFlagEphemeral,
			})
		}

		data := e.SlashCommandInteractionData()
		messageType := models.MessageType(data.String("type"))
		windowOpt, _ := data.OptString("window")
		window := analytics.ParseTimeWindow(windowOpt)
		asImage, _ := data.OptBool("image")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		guildID := e.GuildID().String()
		now := time.Now().In(b.Location)

		events, err := b.EventRepository.GetGuildEvents(ctx, guildID, window.Start(now), now)
		if err != nil {
			slog.Error("Failed to load guild events",
				slog.String("guild_id", guildID),
				slog.String("error", err.Error()))
			return createErrorMessage(e, "Failed to load the leaderboard. Please try again later.")
		}

		profiles, err := b.UserRepository.GetAllByGuild(ctx, guildID)
		if err != nil {
			slog.Error("Failed to load user profiles",
				slog.String("guild_id", guildID),
				slog.String("error", err.Error()))
			return createErrorMessage(e, "Failed to load the leaderboard. Please try again later.")
		}

		profileMap := make(map[string]*models.UserProfile, len(profiles))
		for _, profile := range profiles {
			profileMap[profile.ID] = profile
		}

		entries := analytics.Rank(events, messageType, profileMap)
		if len(entries) == 0 {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{
					discord.NewEmbedBuilder().
						SetTitle("🏆 Leaderboard").
						SetDescription(fmt.Sprintf("Nobody has a %s result %s yet. The clock is ticking!",
							strings.ToUpper(string(messageType)), windowLabel(window))).
						SetColor(colorInfo).
						Build(),
				},
			})
		}

		if asImage && b.ScoreboardImage != nil {
			return sendScoreboardImage(ctx, b, e, messageType, window, entries)
		}

		requester, hasRank := analytics.Position(entries, e.User().ID.String())
		totalPages := (len(entries) + entriesPerPage - 1) / entriesPerPage

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				if page >= totalPages {
					page = totalPages - 1
				}
				start := page * entriesPerPage
				end := start + entriesPerPage
				if end > len(entries) {
					end = len(entries)
				}

				var sb strings.Builder
				for _, entry := range entries[start:end] {
					sb.WriteString(fmt.Sprintf("%s **%s**: %d\n",
						positionLabel(entry.Position), entry.DisplayName, entry.Count))
				}
				if hasRank && (requester.Position <= start || requester.Position > end) {
					sb.WriteString(fmt.Sprintf("\nYour rank: **#%d** with %d", requester.Position, requester.Count))
				}

				embed.
					SetTitle(fmt.Sprintf("🏆 %s leaderboard", strings.ToUpper(string(messageType)))).
					SetDescription(sb.String()).
					SetColor(colorSuccess).
					SetFooter(fmt.Sprintf("Page %d/%d • %s", page+1, totalPages, windowLabel(window)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func sendScoreboardImage(ctx context.Context, b *leetbot.Bot, e *handler.CommandEvent, messageType models.MessageType, window analytics.TimeWindow, entries []analytics.RankingEntry) error {
	if err := e.DeferCreateMessage(false); err != nil {
		return err
	}

	guildName := "This server"
	if guild, ok := b.Client.Caches().Guild(*e.GuildID()); ok {
		guildName = guild.Name
	}

	imageBytes, err := b.ScoreboardImage.GenerateScoreboardImage(ctx, guildName, strings.ToUpper(string(messageType)), window, entries)
	if err != nil {
		slog.Error("Failed to generate scoreboard image",
			slog.String("guild_id", e.GuildID().String()),
			slog.String("error", err.Error()))
		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: ptr("Failed to render the scoreboard image. Please try again later."),
		})
		return err
	}

	file := discord.File{
		Name:        fmt.Sprintf("scoreboard_%s.png", messageType),
		Description: fmt.Sprintf("%s scoreboard", strings.ToUpper(string(messageType))),
		Reader:      bytes.NewReader(imageBytes),
	}
	_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
		Files: []*discord.File{&file},
	})
	return err
}

func positionLabel(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("`#%d`", position)
	}
}

func windowLabel(window analytics.TimeWindow) string {
	switch window {
	case analytics.TimeWindowThisWeek:
		return "this week"
	case analytics.TimeWindowThisMonth:
		return "this month"
	case analytics.TimeWindowThisYear:
		return "this year"
	default:
		return "all time"
	}
}

func createErrorMessage(e *handler.CommandEvent, message string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{
			discord.NewEmbedBuilder().
				SetTitle("❌ Error").
				SetDescription(message).
				SetColor(colorError).
				Build(),
		},
		Flags: discord.MessageFlagEphemeral,
	})
}
