// Package store persists planning sessions: the trip form a session was
// started with and its full conversation history, keyed by session id.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/conversation"
	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/session"
)

// RecordVersion is the current on-disk record format version
const RecordVersion = 1

// Record is everything needed to resume a session
type Record struct {
	Version   int                `json:"version"`
	Key       string             `json:"key"`
	Session   session.Context    `json:"session"`
	Messages  []llmtypes.Message `json:"messages"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Store loads and saves session records. Save replaces the whole record
// atomically: a reader sees either the previous or the new record.
type Store interface {
	Load(ctx context.Context, key string) (*Record, bool, error)
	Save(ctx context.Context, key string, rec *Record) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Open builds the store selected by cfg.Driver
func Open(cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		s, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// ValidateKey rejects keys no backend can address
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("session key is required")
	}
	if len(key) > 128 {
		return fmt.Errorf("session key is too long (%d > 128)", len(key))
	}
	return nil
}

// cloneRecord deep-copies rec so callers never share message slices with a store
func cloneRecord(rec *Record) *Record {
	if rec == nil {
		return nil
	}
	out := *rec
	out.Session = rec.Session.Clone()
	out.Messages = conversation.New(rec.Messages...).Messages()
	return &out
}

// stamp fills the bookkeeping fields before a save
func stamp(key string, rec *Record, now time.Time) *Record {
	out := cloneRecord(rec)
	out.Version = RecordVersion
	out.Key = key
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	return out
}
