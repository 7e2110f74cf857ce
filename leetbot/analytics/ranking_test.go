package analytics

import (
	"testing"
	"time"

	"github.com/Misacorp/leetbot/leetbot/database/models"
)

func leetEvent(userID string, day int) *models.GameEvent {
	return &models.GameEvent{
		GuildID:     "g1",
		UserID:      userID,
		MessageType: models.MessageTypeLeet,
		CreatedAt:   time.Date(2024, time.January, day, 11, 37, 0, 0, time.UTC),
	}
}

func TestRank(t *testing.T) {
	profiles := map[string]*models.UserProfile{
		"alice": {ID: "alice", GuildID: "g1", Username: "alice", DisplayName: "Alice"},
		"bob":   {ID: "bob", GuildID: "g1", Username: "bob"},
	}

	var events []*models.GameEvent
	// alice and bob tie on five, carol trails with three, and alice's first
	// event precedes bob's.
	for day := 1; day <= 5; day++ {
		events = append(events, leetEvent("alice", day), leetEvent("bob", day))
	}
	for day := 1; day <= 3; day++ {
		events = append(events, leetEvent("carol", day))
	}
	// A leeb event must not leak into the leet ranking.
	events = append(events, &models.GameEvent{
		GuildID:     "g1",
		UserID:      "carol",
		MessageType: models.MessageTypeLeeb,
		CreatedAt:   time.Date(2024, time.January, 9, 11, 38, 0, 0, time.UTC),
	})

	entries := Rank(events, models.MessageTypeLeet, profiles)

	if len(entries) != 3 {
		t.Fatalf("Rank() returned %d entries, want 3", len(entries))
	}

	want := []RankingEntry{
		{Position: 1, UserID: "alice", DisplayName: "Alice", Count: 5},
		{Position: 2, UserID: "bob", DisplayName: "bob", Count: 5},
		{Position: 3, UserID: "carol", DisplayName: "Unknown user", Count: 3},
	}
	for i, w := range want {
		if entries[i] != w {
			t.Errorf("Rank()[%d] = %+v, want %+v", i, entries[i], w)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	if entries := Rank(nil, models.MessageTypeLeet, nil); len(entries) != 0 {
		t.Errorf("Rank(nil) returned %d entries, want 0", len(entries))
	}
}

func TestPosition(t *testing.T) {
	entries := []RankingEntry{
		{Position: 1, UserID: "alice", Count: 5},
		{Position: 2, UserID: "bob", Count: 3},
	}

	if entry, ok := Position(entries, "bob"); !ok || entry.Position != 2 {
		t.Errorf("Position(bob) = %+v, %v; want position 2, true", entry, ok)
	}
	if _, ok := Position(entries, "carol"); ok {
		t.Error("Position(carol) = true, want false")
	}
}
