package analytics

import (
	"sort"
	"time"

	"github.com/Misacorp/leetbot/leetbot/database/models"
)

// Streak is a run of consecutive calendar days. Start and End are midnights
// in the target timezone; a zero Length leaves them zero.
type Streak struct {
	Length int
	Start  time.Time
	End    time.Time
}

// LongestStreak finds the longest run of consecutive calendar days (in loc)
// with at least one event each. Zero or one distinct day yields length 0 or
// 1 with no error.
func LongestStreak(events []*models.GameEvent, loc *time.Location) Streak {
	seen := make(map[time.Time]struct{}, len(events))
	for _, event := range events {
		local := event.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		seen[day] = struct{}{}
	}
	if len(seen) == 0 {
		return Streak{}
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best := Streak{Length: 1, Start: days[0], End: days[0]}
	current := best
	for i := 1; i < len(days); i++ {
		// AddDate normalizes through DST, so "next calendar day" stays exact
		// on 23 and 25 hour days.
		if days[i].Equal(current.End.AddDate(0, 0, 1)) {
			current.Length++
			current.End = days[i]
		} else {
			current = Streak{Length: 1, Start: days[i], End: days[i]}
		}
		if current.Length > best.Length {
			best = current
		}
	}
	return best
}
