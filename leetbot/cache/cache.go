// Package cache provides the shared ephemeral key-value capability with an
// in-process tier in front of the durable record store. Expiry is absolute
// and checked on every read; eviction is the side effect of a failed
// validity check, never a background sweep.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the value and true when the key holds an unexpired entry.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put stores the value until expiresAt. A zero expiresAt never expires.
	Put(ctx context.Context, key, value string, expiresAt time.Time) error
}

// ReadThrough composes a fast tier over a durable tier. Reads fill the fast
// tier on a durable hit; writes go to both.
type ReadThrough struct {
	fast    Cache
	durable Cache
}

func NewReadThrough(fast, durable Cache) *ReadThrough {
	return &ReadThrough{fast: fast, durable: durable}
}

func (c *ReadThrough) Get(ctx context.Context, key string) (string, bool, error) {
	if value, ok, err := c.fast.Get(ctx, key); err != nil {
		return "", false, err
	} else if ok {
		return value, true, nil
	}

	value, ok, err := c.durable.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}

	// Backfill under the fast tier's own retention backstop. The durable
	// record keeps the authoritative TTL; staleness in the fast tier is
	// bounded by its LRU expiry.
	if err := c.fast.Put(ctx, key, value, time.Time{}); err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *ReadThrough) Put(ctx context.Context, key, value string, expiresAt time.Time) error {
	if err := c.durable.Put(ctx, key, value, expiresAt); err != nil {
		return err
	}
	return c.fast.Put(ctx, key, value, expiresAt)
}
