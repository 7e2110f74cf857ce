package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Misacorp/leetbot/leetbot/database"
	"github.com/Misacorp/leetbot/leetbot/database/models"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]database.Record
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

func testRepo(t *testing.T) (GameEventRepository, *fakeStore, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	store := newFakeStore()
	return NewGameEventRepository(store, loc), store, loc
}

func leetAt(id, userID string, at time.Time) *models.GameEvent {
	return &models.GameEvent{
		ID:          id,
		GuildID:     "g1",
		UserID:      userID,
		MessageType: models.MessageTypeLeet,
		CreatedAt:   at,
	}
}

func TestCreateSwallowsReplay(t *testing.T) {
	repo, store, loc := testRepo(t)
	ctx := context.Background()
	at := time.Date(2024, time.May, 6, 13, 37, 12, 0, loc)

	if err := repo.Create(ctx, leetAt("m1", "u1", at)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// The redelivered copy of the same message lands on the same key.
	if err := repo.Create(ctx, leetAt("m1", "u1", at)); err != nil {
		t.Fatalf("Create() on replay error = %v", err)
	}

	if got := len(store.records); got != 1 {
		t.Errorf("store holds %d records after a replay, want 1", got)
	}
}

func TestHasScoredOnDay(t *testing.T) {
	repo, _, loc := testRepo(t)
	ctx := context.Background()

	scored := time.Date(2024, time.May, 6, 13, 37, 12, 0, loc)
	if err := repo.Create(ctx, leetAt("m1", "u1", scored)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name   string
		userID string
		at     time.Time
		want   bool
	}{
		{name: "same user same day", userID: "u1", at: scored.Add(time.Minute), want: true},
		{name: "same user next day", userID: "u1", at: scored.AddDate(0, 0, 1), want: false},
		{name: "same user previous day", userID: "u1", at: scored.AddDate(0, 0, -1), want: false},
		{name: "other user same day", userID: "u2", at: scored, want: false},
		{
			// 23:30 UTC on May 6 is already May 7 in Helsinki.
			name:   "UTC evening is the next local day",
			userID: "u1",
			at:     time.Date(2024, time.May, 6, 23, 30, 0, 0, time.UTC),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.HasScoredOnDay(ctx, "g1", tt.userID, tt.at)
			if err != nil {
				t.Fatalf("HasScoredOnDay() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasScoredOnDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasScoredOnDayIgnoresNonScoringEvents(t *testing.T) {
	repo, _, loc := testRepo(t)
	ctx := context.Background()
	at := time.Date(2024, time.May, 6, 15, 0, 0, 0, loc)

	event := leetAt("m1", "u1", at)
	event.MessageType = models.MessageTypeOther
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.HasScoredOnDay(ctx, "g1", "u1", at)
	if err != nil {
		t.Fatalf("HasScoredOnDay() error = %v", err)
	}
	if got {
		t.Error("HasScoredOnDay() = true for a non-scoring event")
	}
}

func TestGetUserEventsRange(t *testing.T) {
	repo, _, loc := testRepo(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		at := time.Date(2024, time.May, day, 13, 37, 0, 0, loc)
		if err := repo.Create(ctx, leetAt("m"+string(rune('0'+day)), "u1", at)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	// Another user's event inside the range must stay invisible.
	if err := repo.Create(ctx, leetAt("mx", "u2", time.Date(2024, time.May, 3, 13, 37, 0, 0, loc))); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	from := time.Date(2024, time.May, 2, 0, 0, 0, 0, loc)
	to := time.Date(2024, time.May, 5, 0, 0, 0, 0, loc)
	events, err := repo.GetUserEvents(ctx, "g1", "u1", from, to)
	if err != nil {
		t.Fatalf("GetUserEvents() error = %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("GetUserEvents() returned %d events, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].CreatedAt.Before(events[i-1].CreatedAt) {
			t.Error("GetUserEvents() results are not chronological")
		}
	}
	for _, event := range events {
		if event.UserID != "u1" {
			t.Errorf("GetUserEvents() leaked an event of %s", event.UserID)
		}
	}
}

func TestGetGuildEventsFiltersByDate(t *testing.T) {
	repo, _, loc := testRepo(t)
	ctx := context.Background()

	inRange := time.Date(2024, time.May, 6, 13, 37, 0, 0, loc)
	outOfRange := time.Date(2024, time.April, 1, 13, 37, 0, 0, loc)
	if err := repo.Create(ctx, leetAt("m1", "u1", inRange)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, leetAt("m2", "u2", inRange.Add(time.Minute))); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, leetAt("m3", "u1", outOfRange)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	from := time.Date(2024, time.May, 1, 0, 0, 0, 0, loc)
	events, err := repo.GetGuildEvents(ctx, "g1", from, from.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("GetGuildEvents() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("GetGuildEvents() returned %d events, want 2", len(events))
	}
	for _, event := range events {
		if event.CreatedAt.Before(from) {
			t.Errorf("GetGuildEvents() included out-of-range event %s", event.ID)
		}
	}
}
