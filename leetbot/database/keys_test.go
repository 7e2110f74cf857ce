package database

import (
	"strings"
	"testing"
	"time"
)

func TestEventSortKeyIsUTCWithMilliseconds(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	at := time.Date(2024, time.May, 6, 13, 37, 12, int(345*time.Millisecond), loc)
	got := EventSortKey("u1", at)
	want := "event#u1#2024-05-06T10:37:12.345Z"
	if got != want {
		t.Errorf("EventSortKey() = %q, want %q", got, want)
	}
}

func TestEventSortKeyOrderIsChronological(t *testing.T) {
	base := time.Date(2024, time.May, 6, 10, 37, 0, 0, time.UTC)
	instants := []time.Time{
		base,
		base.Add(9 * time.Millisecond),
		base.Add(10 * time.Millisecond),
		base.Add(time.Second),
		base.Add(time.Hour),
		base.AddDate(0, 0, 1),
		base.AddDate(0, 7, 0),
	}

	prev := EventSortKey("u1", instants[0])
	for _, at := range instants[1:] {
		next := EventSortKey("u1", at)
		if !(prev < next) {
			t.Errorf("sort keys out of order: %q is not before %q", prev, next)
		}
		prev = next
	}
}

func TestPrefixesCoverTheirKeys(t *testing.T) {
	at := time.Date(2024, time.May, 6, 10, 37, 0, 0, time.UTC)

	if key := EventSortKey("u1", at); !strings.HasPrefix(key, UserEventPrefix("u1")) {
		t.Errorf("event key %q does not start with its user prefix %q", key, UserEventPrefix("u1"))
	}
	if key := EventSortKey("u1", at); !strings.HasPrefix(key, EventPrefix) {
		t.Errorf("event key %q does not start with the event prefix", key)
	}
	if key := UserProfileSortKey("u1"); !strings.HasPrefix(key, UserProfilePrefix) {
		t.Errorf("profile key %q does not start with the profile prefix", key)
	}

	// A user ID that is a prefix of another must not capture its events.
	if strings.HasPrefix(EventSortKey("u12", at), UserEventPrefix("u1")) {
		t.Error("user prefix u1 captured events of user u12")
	}
}

func TestRecordKindsShareGuildPartition(t *testing.T) {
	pk := GuildPartitionKey("g1")
	if pk != "guild#g1" {
		t.Errorf("GuildPartitionKey() = %q, want guild#g1", pk)
	}
	if GuildProfileSortKey() == UserProfileSortKey("profile") {
		t.Error("guild profile key collides with a user profile key")
	}
}
