package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultMemorySize = 1024
	// memoryRetention bounds how long the in-process tier keeps anything,
	// including entries backfilled without their own expiry.
	memoryRetention = time.Minute
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is the in-process tier: an expirable LRU plus a per-entry absolute
// expiry checked on every read.
type Memory struct {
	entries *expirable.LRU[string, memoryEntry]
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: expirable.NewLRU[string, memoryEntry](defaultMemorySize, nil, memoryRetention),
		now:     time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *Memory) Put(_ context.Context, key, value string, expiresAt time.Time) error {
	c.entries.Add(key, memoryEntry{value: value, expiresAt: expiresAt})
	return nil
}
