package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Misacorp/leetbot/leetbot/database"
	"github.com/Misacorp/leetbot/leetbot/database/models"
)

type GameEventRepository interface {
	// Create appends the event. Replays of the same message are swallowed so
	// that at-least-once delivery cannot duplicate a row.
	Create(ctx context.Context, event *models.GameEvent) error
	// HasScoredOnDay reports whether the user already has a scoring event on
	// the local calendar day of the given instant.
	HasScoredOnDay(ctx context.Context, guildID, userID string, at time.Time) (bool, error)
	GetUserEvents(ctx context.Context, guildID, userID string, from, to time.Time) ([]*models.GameEvent, error)
	GetGuildEvents(ctx context.Context, guildID string, from, to time.Time) ([]*models.GameEvent, error)
}

type gameEventRepository struct {
	store database.Store
	loc   *time.Location
}

func NewGameEventRepository(store database.Store, loc *time.Location) GameEventRepository {
	return &gameEventRepository{store: store, loc: loc}
}

func (r *gameEventRepository) Create(ctx context.Context, event *models.GameEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal game event: %w", err)
	}

	err = r.store.PutIfAbsent(ctx, database.Record{
		PartitionKey: database.GuildPartitionKey(event.GuildID),
		SortKey:      database.EventSortKey(event.UserID, event.CreatedAt),
		Payload:      payload,
	})
	if errors.Is(err, database.ErrRecordExists) {
		// Redelivered message that already landed. Not an error.
		slog.Info("Game event already recorded, skipping",
			slog.String("type", "db"),
			slog.String("message_id", event.ID),
			slog.String("user_id", event.UserID),
		)
		return nil
	}
	return err
}

func (r *gameEventRepository) HasScoredOnDay(ctx context.Context, guildID, userID string, at time.Time) (bool, error) {
	dayStart, dayEnd := localDayBounds(at, r.loc)

	records, err := r.store.QueryByRange(ctx,
		database.GuildPartitionKey(guildID),
		database.EventSortKey(userID, dayStart),
		database.EventSortKey(userID, dayEnd),
	)
	if err != nil {
		return false, fmt.Errorf("failed to query day events for %s: %w", userID, err)
	}

	for _, record := range records {
		event, err := unmarshalEvent(record)
		if err != nil {
			slog.Warn("Skipping undecodable game event record",
				slog.String("type", "db"),
				slog.String("sort_key", record.SortKey),
				slog.Any("error", err),
			)
			continue
		}
		if event.MessageType.Scoring() {
			return true, nil
		}
	}
	return false, nil
}

func (r *gameEventRepository) GetUserEvents(ctx context.Context, guildID, userID string, from, to time.Time) ([]*models.GameEvent, error) {
	records, err := r.store.QueryByRange(ctx,
		database.GuildPartitionKey(guildID),
		database.EventSortKey(userID, from),
		database.EventSortKey(userID, to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user events: %w", err)
	}
	return decodeEvents(records, from, to), nil
}

func (r *gameEventRepository) GetGuildEvents(ctx context.Context, guildID string, from, to time.Time) ([]*models.GameEvent, error) {
	// Event sort keys lead with the user id, so a guild-wide date range has
	// to scan the whole event prefix and filter. One scoring event per user
	// per day keeps that scan small.
	records, err := r.store.QueryByPrefix(ctx,
		database.GuildPartitionKey(guildID),
		database.EventPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query guild events: %w", err)
	}
	return decodeEvents(records, from, to), nil
}

func decodeEvents(records []database.Record, from, to time.Time) []*models.GameEvent {
	events := make([]*models.GameEvent, 0, len(records))
	for _, record := range records {
		event, err := unmarshalEvent(record)
		if err != nil {
			slog.Warn("Skipping undecodable game event record",
				slog.String("type", "db"),
				slog.String("sort_key", record.SortKey),
				slog.Any("error", err),
			)
			continue
		}
		if event.CreatedAt.Before(from) || !event.CreatedAt.Before(to) {
			continue
		}
		events = append(events, event)
	}
	return events
}

func unmarshalEvent(record database.Record) (*models.GameEvent, error) {
	var event models.GameEvent
	if err := json.Unmarshal(record.Payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game event: %w", err)
	}
	return &event, nil
}

// localDayBounds returns the [midnight, next midnight) pair of the instant's
// calendar day in loc. time.Date normalizes across DST transitions, so the
// bounds stay correct on 23 and 25 hour days.
func localDayBounds(at time.Time, loc *time.Location) (time.Time, time.Time) {
	local := at.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return start, end
}
