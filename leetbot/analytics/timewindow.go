// Package analytics computes the read-side statistics (fastest finish,
// streaks, rankings) over persisted game history.
package analytics

import "time"

// TimeWindow is a named query range ending now.
type TimeWindow string

const (
	TimeWindowThisWeek  TimeWindow = "this-week"
	TimeWindowThisMonth TimeWindow = "this-month"
	TimeWindowThisYear  TimeWindow = "this-year"
	TimeWindowAllTime   TimeWindow = "all-time"
)

// AllTimeStart is the first recorded game day; "all-time" queries start here.
var AllTimeStart = time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)

// ParseTimeWindow maps a selector onto a window. Unrecognized or absent
// selectors mean all-time.
func ParseTimeWindow(s string) TimeWindow {
	switch TimeWindow(s) {
	case TimeWindowThisWeek, TimeWindowThisMonth, TimeWindowThisYear:
		return TimeWindow(s)
	default:
		return TimeWindowAllTime
	}
}

// Start returns the window's lower bound for a query ending at now.
func (w TimeWindow) Start(now time.Time) time.Time {
	switch w {
	case TimeWindowThisWeek:
		return now.AddDate(0, 0, -7)
	case TimeWindowThisMonth:
		return now.AddDate(0, -1, 0)
	case TimeWindowThisYear:
		return now.AddDate(-1, 0, 0)
	default:
		return AllTimeStart
	}
}

func (w TimeWindow) String() string {
	return string(w)
}
