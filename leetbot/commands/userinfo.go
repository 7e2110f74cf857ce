package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"

	"github.com/Misacorp/leetbot/leetbot"
	"github.com/Misacorp/leetbot/leetbot/analytics"
	"github.com/Misacorp/leetbot/leetbot/database/models"
	"github.com/Misacorp/leetbot/leetbot/database/repositories"
)

var UserInfo = discord.SlashCommandCreate{
	Name:        "user-info",
	Description: "📊 View a player's game statistics",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "user",
			Description:  "The player to look up",
			Required:     true,
			Autocomplete: true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "window",
			Description: "Time window for the statistics (default: all time)",
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "This week", Value: string(analytics.TimeWindowThisWeek)},
				{Name: "This month", Value: string(analytics.TimeWindowThisMonth)},
				{Name: "This year", Value: string(analytics.TimeWindowThisYear)},
				{Name: "All time", Value: string(analytics.TimeWindowAllTime)},
			},
		},
	},
}

func UserInfoHandler(b *leetbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return e.CreateMessage(discord.MessageCreate{
				Content: "This command only works in a server",
				Flags:   discord.MessageFlagEphemeral,
			})
		}

		data := e.SlashCommandInteractionData()
		query := data.String("user")
		windowOpt, _ := data.OptString("window")
		window := analytics.ParseTimeWindow(windowOpt)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		guildID := e.GuildID().String()
		profile, err := resolveProfile(ctx, b, guildID, query)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return createErrorMessage(e, fmt.Sprintf("No player matching `%s` has played here yet.", query))
			}
			slog.Error("Failed to resolve user profile",
				slog.String("guild_id", guildID),
				slog.String("query", query),
				slog.String("error", err.Error()))
			return createErrorMessage(e, "Failed to look up that player. Please try again later.")
		}

		now := time.Now().In(b.Location)
		events, err := b.EventRepository.GetUserEvents(ctx, guildID, profile.ID, window.Start(now), now)
		if err != nil {
			slog.Error("Failed to load user events",
				slog.String("guild_id", guildID),
				slog.String("user_id", profile.ID),
				slog.String("error", err.Error()))
			return createErrorMessage(e, "Failed to look up that player. Please try again later.")
		}

		counts := make(map[models.MessageType]int)
		var scoring []*models.GameEvent
		for _, event := range events {
			counts[event.MessageType]++
			if event.MessageType.Scoring() {
				scoring = append(scoring, event)
			}
		}

		streak := analytics.LongestStreak(scoring, b.Location)
		fastest := analytics.Fastest(analytics.OfType(events, models.MessageTypeLeet))

		embed := discord.NewEmbedBuilder().
			SetTitle(fmt.Sprintf("📊 %s", profile.EffectiveName())).
			SetColor(colorInfo).
			AddField("LEET", fmt.Sprintf("%d", counts[models.MessageTypeLeet]), true).
			AddField("LEEB", fmt.Sprintf("%d", counts[models.MessageTypeLeeb]), true).
			AddField("Failed LEET", fmt.Sprintf("%d", counts[models.MessageTypeFailedLeet]), true)

		if streak.Length > 0 {
			embed.AddField("Longest streak",
				fmt.Sprintf("%d days (%s to %s)",
					streak.Length,
					streak.Start.Format("2 Jan 2006"),
					streak.End.Format("2 Jan 2006")),
				false)
		}
		if fastest.OffsetMs >= 0 {
			embed.AddField("Fastest finish",
				fmt.Sprintf("%d.%03d s into the minute", fastest.OffsetMs/1000, fastest.OffsetMs%1000),
				false)
		}
		if profile.AvatarURL != "" {
			embed.SetThumbnail(profile.AvatarURL)
		}
		if profile.BannerURL != "" {
			embed.SetImage(profile.BannerURL)
		}
		embed.SetFooter(fmt.Sprintf("%d events recorded • %s", len(events), windowLabel(window)), "")

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
		})
	}
}

// resolveProfile accepts either a user ID (the value an autocomplete choice
// carries) or a free-typed name, which falls through to a fuzzy match over
// the guild's stored profiles.
func resolveProfile(ctx context.Context, b *leetbot.Bot, guildID, query string) (*models.UserProfile, error) {
	profile, err := b.UserRepository.Get(ctx, guildID, query)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	profiles, err := b.UserRepository.GetAllByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.EffectiveName()
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return nil, repositories.ErrUserNotFound
	}
	return profiles[matches[0].Index], nil
}

func UserInfoAutocomplete(b *leetbot.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic in autocomplete handler",
					slog.Any("panic", r),
					slog.String("stack_trace", string(debug.Stack())),
				)
			}
		}()

		focused := e.Data.Focused()
		if focused.Name != "user" {
			return nil
		}

		searchTerm := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				slog.Error("Failed to unmarshal focused.Value",
					slog.String("error", err.Error()))
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			searchTerm = strings.TrimSpace(s)
		}

		if e.GuildID() == nil {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		profiles, err := b.UserRepository.GetAllByGuild(ctx, e.GuildID().String())
		if err != nil {
			slog.Error("Failed to load profiles for autocomplete",
				slog.String("guild_id", e.GuildID().String()),
				slog.String("error", err.Error()))
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		candidates := profiles
		if searchTerm != "" {
			names := make([]string, len(profiles))
			for i, p := range profiles {
				names[i] = p.EffectiveName()
			}
			matches := fuzzy.Find(searchTerm, names)
			candidates = make([]*models.UserProfile, 0, len(matches))
			for _, match := range matches {
				candidates = append(candidates, profiles[match.Index])
			}
		}

		choices := make([]discord.AutocompleteChoice, 0, 25)
		for _, profile := range candidates {
			if len(choices) >= 25 {
				break
			}
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  profile.EffectiveName(),
				Value: profile.ID,
			})
		}
		return e.AutocompleteResult(choices)
	}
}
