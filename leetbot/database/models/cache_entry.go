package models

import "time"

// CacheEntry is an ephemeral value shared through the record store. TTL is an
// absolute expiry in epoch seconds; entries past it are treated as absent.
type CacheEntry struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	TTL   int64  `json:"ttl"`
}

// Expired reports whether the entry is past its expiry at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return e.TTL > 0 && now.Unix() >= e.TTL
}
