package lookupcache

import (
	"encoding/json"
	"time"
)

// Entry is a cached lookup result with metadata
type Entry struct {
	Key         string          `json:"key"`          // SHA256 of tool + canonical input
	Tool        string          `json:"tool"`         // Tool that produced the result
	Payload     json.RawMessage `json:"payload"`      // Serialized normalized result
	CreatedAt   time.Time       `json:"created_at"`   // When cached
	ExpiresAt   time.Time       `json:"expires_at"`   // When entry expires
	AccessCount int             `json:"access_count"` // Number of times served
}

// SizeBytes approximates the memory held by the entry
func (e *Entry) SizeBytes() int64 {
	return int64(len(e.Payload) + len(e.Key) + len(e.Tool))
}

// IsExpiredAt reports whether the entry is stale at now
func (e *Entry) IsExpiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
