package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Misacorp/leetbot/leetbot/database"
	"github.com/Misacorp/leetbot/leetbot/database/models"
)

var ErrUserNotFound = errors.New("user profile not found")

type UserRepository interface {
	// Upsert overwrites the profile under (guild, user). Last write wins.
	Upsert(ctx context.Context, profile *models.UserProfile) error
	Get(ctx context.Context, guildID, userID string) (*models.UserProfile, error)
	GetAllByGuild(ctx context.Context, guildID string) ([]*models.UserProfile, error)
}

type userRepository struct {
	store database.Store
}

func NewUserRepository(store database.Store) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}

	return r.store.Put(ctx, database.Record{
		PartitionKey: database.GuildPartitionKey(profile.GuildID),
		SortKey:      database.UserProfileSortKey(profile.ID),
		Payload:      payload,
	})
}

func (r *userRepository) Get(ctx context.Context, guildID, userID string) (*models.UserProfile, error) {
	record, err := r.store.Get(ctx, database.GuildPartitionKey(guildID), database.UserProfileSortKey(userID))
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(record.Payload, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user profile: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) GetAllByGuild(ctx context.Context, guildID string) ([]*models.UserProfile, error) {
	records, err := r.store.QueryByPrefix(ctx, database.GuildPartitionKey(guildID), database.UserProfilePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query user profiles: %w", err)
	}

	profiles := make([]*models.UserProfile, 0, len(records))
	for _, record := range records {
		var profile models.UserProfile
		if err := json.Unmarshal(record.Payload, &profile); err != nil {
			continue
		}
		profiles = append(profiles, &profile)
	}
	return profiles, nil
}
