package analytics

import (
	"github.com/Misacorp/leetbot/leetbot/database/models"
)

// FastestResult reports the quickest finishers among a set of events.
// OffsetMs is the winning distance into the minute; Events holds every event
// that hit it, so identical offsets are all co-winners.
type FastestResult struct {
	OffsetMs int
	Events   []*models.GameEvent
}

// OfType narrows events to one message type, for statistics that carry no
// type filter of their own. The fastest finish is defined over leet events
// only; legacy rows of other types must not enter it.
func OfType(events []*models.GameEvent, messageType models.MessageType) []*models.GameEvent {
	filtered := make([]*models.GameEvent, 0, len(events))
	for _, event := range events {
		if event.MessageType == messageType {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// Fastest finds the minimum within-minute offset (seconds*1000 +
// milliseconds, range [0, 59999]) over the events. The offset is independent
// of timezone, so no location is needed. An empty input yields OffsetMs -1
// and no events.
func Fastest(events []*models.GameEvent) FastestResult {
	result := FastestResult{OffsetMs: -1}
	for _, event := range events {
		offset := event.CreatedAt.Second()*1000 + event.CreatedAt.Nanosecond()/int(1e6)
		switch {
		case result.OffsetMs < 0 || offset < result.OffsetMs:
			result.OffsetMs = offset
			result.Events = []*models.GameEvent{event}
		case offset == result.OffsetMs:
			result.Events = append(result.Events, event)
		}
	}
	return result
}
