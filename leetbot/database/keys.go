package database

import (
	"fmt"
	"time"
)

// Key scheme: one partition per guild, record kind encoded in the sort key.
//
//	guild#<guildID> / event#<userID>#<rfc3339-utc-ms>   game events
//	guild#<guildID> / user#<userID>                     user profiles
//	guild#<guildID> / profile                           guild profile
//	cache           / <cacheID>                         shared cache entries
//
// Event timestamps are stored in UTC with fixed millisecond precision so that
// lexicographic sort-key order is chronological order and range queries can be
// built from converted local-day boundaries.

const (
	eventSortKeyTimeLayout = "2006-01-02T15:04:05.000Z"

	guildProfileSortKey = "profile"
	cachePartitionKey   = "cache"
)

func GuildPartitionKey(guildID string) string {
	return "guild#" + guildID
}

func EventSortKey(userID string, at time.Time) string {
	return fmt.Sprintf("event#%s#%s", userID, at.UTC().Format(eventSortKeyTimeLayout))
}

// UserEventPrefix matches every event of one user in a guild partition.
func UserEventPrefix(userID string) string {
	return "event#" + userID + "#"
}

// EventPrefix matches every event in a guild partition regardless of user.
const EventPrefix = "event#"

func UserProfileSortKey(userID string) string {
	return "user#" + userID
}

const UserProfilePrefix = "user#"

func GuildProfileSortKey() string {
	return guildProfileSortKey
}

func CachePartitionKey() string {
	return cachePartitionKey
}
