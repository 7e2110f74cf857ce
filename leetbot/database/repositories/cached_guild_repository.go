package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Misacorp/leetbot/leetbot/cache"
	"github.com/Misacorp/leetbot/leetbot/database/models"
)

// guildProfileTTL keeps a cached profile serving until the next sync or
// expiry, whichever comes first. Upserts invalidate eagerly, so the TTL only
// matters for writes made by other processes.
const guildProfileTTL = 15 * time.Minute

type cachedGuildRepository struct {
	inner GuildRepository
	cache cache.Cache
	now   func() time.Time
}

// NewCachedGuildRepository puts the shared cache in front of guild profile
// reads. Every inbound message resolves the guild profile, so this is the
// hottest read path in the bot.
func NewCachedGuildRepository(inner GuildRepository, c cache.Cache) GuildRepository {
	return &cachedGuildRepository{inner: inner, cache: c, now: time.Now}
}

func guildProfileCacheKey(guildID string) string {
	return "guild-profile#" + guildID
}

func (r *cachedGuildRepository) Get(ctx context.Context, guildID string) (*models.GuildProfile, error) {
	key := guildProfileCacheKey(guildID)

	if value, ok, err := r.cache.Get(ctx, key); err != nil {
		slog.Warn("Guild profile cache read failed, falling back to store",
			slog.String("type", "db"),
			slog.String("guild_id", guildID),
			slog.Any("error", err),
		)
	} else if ok {
		var profile models.GuildProfile
		if err := json.Unmarshal([]byte(value), &profile); err == nil {
			return &profile, nil
		}
		slog.Warn("Discarding undecodable cached guild profile",
			slog.String("type", "db"),
			slog.String("guild_id", guildID),
		)
	}

	profile, err := r.inner.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(profile); err == nil {
		if err := r.cache.Put(ctx, key, string(payload), r.now().Add(guildProfileTTL)); err != nil {
			slog.Warn("Guild profile cache write failed",
				slog.String("type", "db"),
				slog.String("guild_id", guildID),
				slog.Any("error", err),
			)
		}
	}
	return profile, nil
}

func (r *cachedGuildRepository) Upsert(ctx context.Context, profile *models.GuildProfile) error {
	if err := r.inner.Upsert(ctx, profile); err != nil {
		return err
	}

	// Refresh rather than invalidate: the sync service already holds the
	// newest profile, so hand it straight to the next reader.
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal guild profile for cache: %w", err)
	}
	if err := r.cache.Put(ctx, guildProfileCacheKey(profile.ID), string(payload), r.now().Add(guildProfileTTL)); err != nil {
		slog.Warn("Guild profile cache refresh failed",
			slog.String("type", "db"),
			slog.String("guild_id", profile.ID),
			slog.Any("error", err),
		)
	}
	return nil
}
