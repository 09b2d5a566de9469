package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DefaultHistory is the number of save revisions kept by SQLiteStore
const DefaultHistory = 10

// SQLiteStore keeps a bounded history of saves in a SQLite database
// Load returns the newest revision
type SQLiteStore struct {
	conn    *sqlx.DB
	history int
	profile string
}

// Revision is one stored save
type Revision struct {
	ID      int64  `db:"id"`
	SavedAt int64  `db:"saved_at"`
	Version int    `db:"version"`
	Data    []byte `db:"data"`
}

// OpenSQLite opens or creates the database at path
func OpenSQLite(path string, history int) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if history <= 0 {
		history = DefaultHistory
	}

	s := &SQLiteStore{conn: conn, history: history}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.ensureProfile(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("profile: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS saves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		saved_at INTEGER NOT NULL,
		version INTEGER NOT NULL,
		data BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);
	`)
	return err
}

func (s *SQLiteStore) ensureProfile() error {
	id, err := s.getMeta("profile_id")
	if err == nil {
		s.profile = id
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	s.profile = uuid.NewString()
	return s.setMeta("profile_id", s.profile)
}

func (s *SQLiteStore) getMeta(key string) (string, error) {
	var value string
	err := s.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

func (s *SQLiteStore) setMeta(key, value string) error {
	_, err := s.conn.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// ProfileID identifies this save database across sessions
func (s *SQLiteStore) ProfileID() string {
	return s.profile
}

func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.conn.GetContext(ctx, &data, "SELECT data FROM saves ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("load save: %w", err)
	}
	return data, nil
}

// Save appends a revision and prunes anything beyond the history limit
func (s *SQLiteStore) Save(ctx context.Context, data []byte) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO saves (saved_at, version, data) VALUES (?, ?, ?)",
		time.Now().UnixMilli(), CurrentVersion, data,
	); err != nil {
		return fmt.Errorf("insert save: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM saves WHERE id NOT IN (SELECT id FROM saves ORDER BY id DESC LIMIT ?)",
		s.history,
	); err != nil {
		return fmt.Errorf("prune saves: %w", err)
	}
	return tx.Commit()
}

// Revisions lists stored saves newest first
func (s *SQLiteStore) Revisions(ctx context.Context) ([]Revision, error) {
	var revs []Revision
	err := s.conn.SelectContext(ctx, &revs, "SELECT id, saved_at, version, data FROM saves ORDER BY id DESC")
	return revs, err
}

// Clear deletes every revision; the profile id survives
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, "DELETE FROM saves")
	return err
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
