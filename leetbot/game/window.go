package game

import "time"

// Window labels the one-minute local-time interval a message landed in.
type Window int

const (
	WindowNone Window = iota
	WindowLeet        // 13:37 local
	WindowLeeb        // 13:38 local
)

func (w Window) String() string {
	switch w {
	case WindowLeet:
		return "leet"
	case WindowLeeb:
		return "leeb"
	default:
		return "none"
	}
}

// ClassifyWindow converts the instant to wall-clock time in loc and labels
// it. The conversion carries the zone's current offset, so the 13:37 minute
// stays the 13:37 minute across DST transitions. Seconds and below never
// matter: 13:37:59.999 is still WindowLeet and 13:38:00.000 is WindowLeeb.
func ClassifyWindow(t time.Time, loc *time.Location) Window {
	local := t.In(loc)
	if local.Hour() != 13 {
		return WindowNone
	}
	switch local.Minute() {
	case 37:
		return WindowLeet
	case 38:
		return WindowLeeb
	default:
		return WindowNone
	}
}
