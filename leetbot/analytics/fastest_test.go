package analytics

import (
	"testing"
	"time"

	"github.com/Misacorp/leetbot/leetbot/database/models"
)

func eventAt(id string, offsetMs int) *models.GameEvent {
	return &models.GameEvent{
		ID:          id,
		GuildID:     "g1",
		UserID:      "u-" + id,
		MessageType: models.MessageTypeLeet,
		CreatedAt:   time.Date(2024, time.May, 6, 11, 37, 0, 0, time.UTC).Add(time.Duration(offsetMs) * time.Millisecond),
	}
}

func TestFastest(t *testing.T) {
	tests := []struct {
		name       string
		events     []*models.GameEvent
		wantOffset int
		wantIDs    []string
	}{
		{
			name:       "no events",
			events:     nil,
			wantOffset: -1,
			wantIDs:    nil,
		},
		{
			name:       "single event",
			events:     []*models.GameEvent{eventAt("a", 420)},
			wantOffset: 420,
			wantIDs:    []string{"a"},
		},
		{
			name: "ties are co-winners",
			events: []*models.GameEvent{
				eventAt("a", 250),
				eventAt("b", 100),
				eventAt("c", 100),
				eventAt("d", 300),
			},
			wantOffset: 100,
			wantIDs:    []string{"b", "c"},
		},
		{
			name:       "zero offset wins",
			events:     []*models.GameEvent{eventAt("a", 0), eventAt("b", 1)},
			wantOffset: 0,
			wantIDs:    []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fastest(tt.events)
			if got.OffsetMs != tt.wantOffset {
				t.Errorf("Fastest().OffsetMs = %d, want %d", got.OffsetMs, tt.wantOffset)
			}
			if len(got.Events) != len(tt.wantIDs) {
				t.Fatalf("Fastest() returned %d events, want %d", len(got.Events), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got.Events[i].ID != id {
					t.Errorf("Fastest().Events[%d].ID = %q, want %q", i, got.Events[i].ID, id)
				}
			}
		})
	}
}

func TestFastestOverLeetEventsOnly(t *testing.T) {
	legacy := eventAt("legacy", 0)
	legacy.MessageType = models.MessageTypeOther
	leeb := eventAt("leeb", 500)
	leeb.MessageType = models.MessageTypeLeeb
	leet := eventAt("winner", 2000)

	events := []*models.GameEvent{legacy, leeb, leet}

	got := Fastest(OfType(events, models.MessageTypeLeet))
	if got.OffsetMs != 2000 {
		t.Errorf("Fastest(OfType()).OffsetMs = %d, want 2000", got.OffsetMs)
	}
	if len(got.Events) != 1 || got.Events[0].ID != "winner" {
		t.Errorf("Fastest(OfType()).Events = %+v, want only the leet event", got.Events)
	}
}

func TestFastestIgnoresTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	utc := eventAt("a", 1500)
	local := &models.GameEvent{ID: "b", CreatedAt: utc.CreatedAt.In(loc)}

	if got := Fastest([]*models.GameEvent{utc, local}); len(got.Events) != 2 {
		t.Errorf("Fastest() treated the same instant in two zones as different offsets: %+v", got)
	}
}
