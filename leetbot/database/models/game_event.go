package models

import "time"

// MessageType classifies a persisted game event. The legacy values "other" and
// "test" only appear on rows imported from the old bot and never count toward
// the once-per-day rule.
type MessageType string

const (
	MessageTypeLeet       MessageType = "leet"
	MessageTypeLeeb       MessageType = "leeb"
	MessageTypeFailedLeet MessageType = "failed_leet"
	MessageTypeOther      MessageType = "other"
	MessageTypeTest       MessageType = "test"
)

// Scoring reports whether events of this type consume the user's daily attempt.
func (t MessageType) Scoring() bool {
	switch t {
	case MessageTypeLeet, MessageTypeLeeb, MessageTypeFailedLeet:
		return true
	}
	return false
}

// GameEvent is the append-only record of one scoring attempt. ID is the id of
// the Discord message that produced it; CreatedAt is the source of truth for
// all temporal logic.
type GameEvent struct {
	ID          string      `json:"id"`
	GuildID     string      `json:"guild_id"`
	UserID      string      `json:"user_id"`
	MessageType MessageType `json:"message_type"`
	CreatedAt   time.Time   `json:"created_at"`
}
