package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/user/tripagent/internal/llmtypes"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultSQLiteFile is used when the configured path is a directory
const DefaultSQLiteFile = "sessions.db"

// SQLiteStore persists sessions in a single SQLite database
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens/creates the database at path. A path without an
// extension is treated as a directory holding sessions.db.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store requires a path")
	}
	if path != ":memory:" {
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, DefaultSQLiteFile)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		key TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		session TEXT NOT NULL,
		messages TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the record for key
func (s *SQLiteStore) Load(ctx context.Context, key string) (*Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT version, session, messages, created_at, updated_at FROM sessions WHERE key = ?`, key)

	var (
		rec          Record
		sessionJSON  string
		messagesJSON string
	)
	if err := row.Scan(&rec.Version, &sessionJSON, &messagesJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read session: %w", err)
	}
	if rec.Version != RecordVersion {
		return nil, false, fmt.Errorf("unsupported session format version %d", rec.Version)
	}
	if err := json.Unmarshal([]byte(sessionJSON), &rec.Session); err != nil {
		return nil, false, fmt.Errorf("session row is corrupted: %w", err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &rec.Messages); err != nil {
		return nil, false, fmt.Errorf("session row is corrupted: %w", err)
	}
	rec.Key = key
	return &rec, true, nil
}

// Save upserts the record for key inside a transaction
func (s *SQLiteStore) Save(ctx context.Context, key string, rec *Record) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	out := stamp(key, rec, s.now())

	sessionJSON, err := json.Marshal(out.Session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if out.Messages == nil {
		out.Messages = []llmtypes.Message{}
	}
	messagesJSON, err := json.Marshal(out.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit

	_, err = tx.ExecContext(ctx, `
	INSERT INTO sessions (key, version, session, messages, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		version=excluded.version,
		session=excluded.session,
		messages=excluded.messages,
		updated_at=excluded.updated_at
	`, key, out.Version, string(sessionJSON), string(messagesJSON), out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return tx.Commit()
}

// Delete removes the record for key; an absent key is not an error
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Keys lists stored session keys in sorted order
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM sessions ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
