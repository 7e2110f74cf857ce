package cache

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

// Durable is the record-store tier. Expired records are treated as absent
// and deleted as a side effect of the read that found them expired.
type Durable struct {
	store database.Store
	now   func() time.Time
}

func NewDurable(store database.Store) *Durable {
	return &Durable{store: store, now: time.Now}
}

func (c *Durable) Get(ctx context.Context, key string) (string, bool, error) {
	record, err := c.store.Get(ctx, database.CachePartitionKey(), key)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(record.Payload, &entry); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal cache entry %s: %w", key, err)
	}

	if entry.Expired(c.now()) {
		if err := c.store.Delete(ctx, database.CachePartitionKey(), key); err != nil {
			slog.Warn("Failed to evict expired cache entry",
				slog.String("type", "db"),
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (c *Durable) Put(ctx context.Context, key, value string, expiresAt time.Time) error {
	entry := models.CacheEntry{ID: key, Value: value}
	if !expiresAt.IsZero() {
		entry.TTL = expiresAt.Unix()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry %s: %w", key, err)
	}

	return c.store.Put(ctx, database.Record{
		PartitionKey: database.CachePartitionKey(),
		SortKey:      key,
		Payload:      payload,
		ExpiresAt:    entry.TTL,
	})
}
