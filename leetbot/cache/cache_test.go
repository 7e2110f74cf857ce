package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Misacorp/leetbot/leetbot/database"
)

// fakeStore is an in-memory database.Store for exercising the durable tier
// without a backend.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]database.Record
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]database.Record)}
}

func (s *fakeStore) key(pk, sk string) string { return pk + "\x00" + sk }

func (s *fakeStore) Put(_ context.Context, record database.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[s.key(record.PartitionKey, record.SortKey)] = record
	return nil
}

func (s *fakeStore) PutIfAbsent(_ context.Context, record database.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(record.PartitionKey, record.SortKey)
	if _, ok := s.records[k]; ok {
		return database.ErrRecordExists
	}
	s.records[k] = record
	return nil
}

func (s *fakeStore) Get(_ context.Context, partitionKey, sortKey string) (database.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[s.key(partitionKey, sortKey)]
	if !ok {
		return database.Record{}, database.ErrRecordNotFound
	}
	return record, nil
}

func (s *fakeStore) Delete(_ context.Context, partitionKey, sortKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, s.key(partitionKey, sortKey))
	s.deletes++
	return nil
}

func (s *fakeStore) QueryByPrefix(_ context.Context, partitionKey, sortKeyPrefix string) ([]database.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Record
	for _, record := range s.records {
		if record.PartitionKey == partitionKey && strings.HasPrefix(record.SortKey, sortKeyPrefix) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out, nil
}

func (s *fakeStore) QueryByRange(_ context.Context, partitionKey, sortKeyFrom, sortKeyTo string) ([]database.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Record
	for _, record := range s.records {
		if record.PartitionKey == partitionKey && record.SortKey >= sortKeyFrom && record.SortKey < sortKeyTo {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out, nil
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.May, 6, 12, 0, 0, 0, time.UTC)

	c := NewMemory()
	c.now = func() time.Time { return now }

	if err := c.Put(ctx, "k", "v", now.Add(10*time.Second)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if value, ok, _ := c.Get(ctx, "k"); !ok || value != "v" {
		t.Errorf("Get() before expiry = %q, %v; want v, true", value, ok)
	}

	now = now.Add(10 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get() at expiry = true, want false")
	}
}

func TestMemoryZeroExpiryNeverExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.May, 6, 12, 0, 0, 0, time.UTC)

	c := NewMemory()
	c.now = func() time.Time { return now }

	if err := c.Put(ctx, "k", "v", time.Time{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	now = now.Add(24 * time.Hour)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Error("Get() after a day = false, want true for a zero expiry")
	}
}

func TestDurableExpiryEvictsLazily(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.May, 6, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	c := NewDurable(store)
	c.now = func() time.Time { return now }

	if err := c.Put(ctx, "k", "v", now.Add(time.Minute)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if value, ok, err := c.Get(ctx, "k"); err != nil || !ok || value != "v" {
		t.Fatalf("Get() = %q, %v, %v; want v, true, nil", value, ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get() after expiry = %v, %v; want false, nil", ok, err)
	}
	if store.deletes != 1 {
		t.Errorf("expired read caused %d deletes, want 1", store.deletes)
	}
	if _, err := store.Get(ctx, database.CachePartitionKey(), "k"); err == nil {
		t.Error("expired record still present after the read that found it expired")
	}
}

func TestReadThroughBackfillsFastTier(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	durable := NewDurable(store)
	fast := NewMemory()
	c := NewReadThrough(fast, durable)

	// Seed only the durable tier, as if another process wrote it.
	if err := durable.Put(ctx, "k", "v", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("durable Put() error = %v", err)
	}

	if value, ok, err := c.Get(ctx, "k"); err != nil || !ok || value != "v" {
		t.Fatalf("Get() = %q, %v, %v; want v, true, nil", value, ok, err)
	}
	if value, ok, _ := fast.Get(ctx, "k"); !ok || value != "v" {
		t.Errorf("fast tier after read = %q, %v; want backfilled v", value, ok)
	}
}

func TestReadThroughWritesBothTiers(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	fast := NewMemory()
	c := NewReadThrough(fast, NewDurable(store))

	if err := c.Put(ctx, "k", "v", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, ok, _ := fast.Get(ctx, "k"); !ok {
		t.Error("fast tier missing the written key")
	}
	if _, err := store.Get(ctx, database.CachePartitionKey(), "k"); err != nil {
		t.Errorf("durable tier missing the written key: %v", err)
	}
}
