package analytics

import (
	"testing"
	"time"
)

func TestParseTimeWindow(t *testing.T) {
	tests := []struct {
		in   string
		want TimeWindow
	}{
		{"this-week", TimeWindowThisWeek},
		{"this-month", TimeWindowThisMonth},
		{"this-year", TimeWindowThisYear},
		{"all-time", TimeWindowAllTime},
		{"", TimeWindowAllTime},
		{"yesterday", TimeWindowAllTime},
	}

	for _, tt := range tests {
		if got := ParseTimeWindow(tt.in); got != tt.want {
			t.Errorf("ParseTimeWindow(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTimeWindowStart(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		window TimeWindow
		want   time.Time
	}{
		{TimeWindowThisWeek, time.Date(2024, time.May, 8, 12, 0, 0, 0, time.UTC)},
		{TimeWindowThisMonth, time.Date(2024, time.April, 15, 12, 0, 0, 0, time.UTC)},
		{TimeWindowThisYear, time.Date(2023, time.May, 15, 12, 0, 0, 0, time.UTC)},
		{TimeWindowAllTime, AllTimeStart},
	}

	for _, tt := range tests {
		if got := tt.window.Start(now); !got.Equal(tt.want) {
			t.Errorf("%v.Start() = %v, want %v", tt.window, got, tt.want)
		}
	}
}
