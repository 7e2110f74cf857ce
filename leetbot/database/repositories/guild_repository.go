package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Misacorp/leetbot/leetbot/database"
	"github.com/Misacorp/leetbot/leetbot/database/models"
)

var ErrGuildNotFound = errors.New("guild profile not found")

type GuildRepository interface {
	Get(ctx context.Context, guildID string) (*models.GuildProfile, error)
	Upsert(ctx context.Context, profile *models.GuildProfile) error
}

type guildRepository struct {
	store database.Store
}

func NewGuildRepository(store database.Store) GuildRepository {
	return &guildRepository{store: store}
}

func (r *guildRepository) Get(ctx context.Context, guildID string) (*models.GuildProfile, error) {
	record, err := r.store.Get(ctx, database.GuildPartitionKey(guildID), database.GuildProfileSortKey())
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, ErrGuildNotFound
		}
		return nil, fmt.Errorf("failed to get guild profile: %w", err)
	}

	var profile models.GuildProfile
	if err := json.Unmarshal(record.Payload, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guild profile: %w", err)
	}
	return &profile, nil
}

func (r *guildRepository) Upsert(ctx context.Context, profile *models.GuildProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal guild profile: %w", err)
	}

	return r.store.Put(ctx, database.Record{
		PartitionKey: database.GuildPartitionKey(profile.ID),
		SortKey:      database.GuildProfileSortKey(),
		Payload:      payload,
	})
}
