// Package cache keeps completion replies for the lifetime of one session in
// an in-memory SQLite database, so a repeated question does not cost a
// second upstream call.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/lughat/internal/completion"
)

// MemoryDSN opens a private in-memory database
const MemoryDSN = "file::memory:"

const schema = `
CREATE TABLE IF NOT EXISTS replies (
	key        TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// Store holds cached replies
type Store struct {
	db *sql.DB
}

// Open creates a store on dsn; an empty dsn means MemoryDSN
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// every pooled connection would get its own memory database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &Store{db: db}, nil
}

// Key derives the cache key of a rendered prompt for one provider and model
func Key(provider, model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the reply stored under key. The bool is false on a miss.
func (s *Store) Get(ctx context.Context, key string) (*completion.Result, bool, error) {
	var text, metadata string
	err := s.db.QueryRowContext(ctx,
		`SELECT text, metadata FROM replies WHERE key = ?`, key).Scan(&text, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cached reply: %w", err)
	}

	result := &completion.Result{Text: text}
	if err := json.Unmarshal([]byte(metadata), &result.Metadata); err != nil {
		return nil, false, fmt.Errorf("decode cached metadata: %w", err)
	}
	return result, true, nil
}

// Put stores result under key, replacing an older entry
func (s *Store) Put(ctx context.Context, key string, result *completion.Result) error {
	if result == nil {
		return errors.New("cannot cache a nil result")
	}

	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO replies (key, text, metadata, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET text = excluded.text, metadata = excluded.metadata, created_at = excluded.created_at`,
		key, result.Text, string(metadata), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert cached reply: %w", err)
	}
	return nil
}

// Len returns the number of cached replies
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM replies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cached replies: %w", err)
	}
	return n, nil
}

// Close releases the database; an in-memory store is gone afterwards
func (s *Store) Close() error {
	return s.db.Close()
}
