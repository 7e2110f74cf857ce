package analytics

import (
	"sort"

	"github.com/Misacorp/leetbot/leetbot/database/models"
)

// RankingEntry is one row of a guild ranking.
type RankingEntry struct {
	Position    int
	UserID      string
	DisplayName string
	Count       int
}

// Rank counts events of one type per user and orders users by count,
// descending. Ties keep encounter order: the user whose event appeared first
// in the input ranks ahead, with no further tie-break. Display names fall
// back guild display name -> platform username -> "Unknown user".
func Rank(events []*models.GameEvent, messageType models.MessageType, profiles map[string]*models.UserProfile) []RankingEntry {
	counts := make(map[string]int)
	var order []string
	for _, event := range events {
		if event.MessageType != messageType {
			continue
		}
		if _, ok := counts[event.UserID]; !ok {
			order = append(order, event.UserID)
		}
		counts[event.UserID]++
	}

	entries := make([]RankingEntry, 0, len(order))
	for _, userID := range order {
		entries = append(entries, RankingEntry{
			UserID:      userID,
			DisplayName: profiles[userID].EffectiveName(),
			Count:       counts[userID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// Position finds a user's entry by linear search over the sorted ranking,
// reported even when the user falls outside a display cutoff.
func Position(entries []RankingEntry, userID string) (RankingEntry, bool) {
	for _, entry := range entries {
		if entry.UserID == userID {
			return entry, true
		}
	}
	return RankingEntry{}, false
}
