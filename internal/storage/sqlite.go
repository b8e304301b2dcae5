// Package storage provides SQLite-based persistence for the last good
// profile list, so the quiz can start when the profiles API is unreachable.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/namegame/internal/profile"
)

// Store manages the SQLite database connection for the profile cache.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			headshot_url TEXT NOT NULL,
			data TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_profiles_position ON profiles(position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveProfiles replaces the cached list with profiles, preserving order.
func (s *Store) SaveProfiles(ctx context.Context, profiles []profile.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM profiles"); err != nil {
		return fmt.Errorf("storage: cannot clear profiles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO profiles
		 (id, position, first_name, last_name, headshot_url, data, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare insert: %w", err)
	}
	defer stmt.Close()

	fetchedAt := s.now().Unix()
	for i, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("storage: cannot encode profile %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, i, p.FirstName, p.LastName, p.Headshot.URL, string(data), fetchedAt); err != nil {
			return fmt.Errorf("storage: cannot save profile %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit profiles: %w", err)
	}
	return nil
}

// LoadProfiles returns the cached list and the time it was saved.
// An empty cache yields no profiles and a zero time.
func (s *Store) LoadProfiles(ctx context.Context) ([]profile.Profile, time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data, fetched_at
		 FROM profiles
		 ORDER BY position ASC`,
	)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("storage: cannot query profiles: %w", err)
	}
	defer rows.Close()

	var (
		profiles  []profile.Profile
		fetchedAt int64
	)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data, &fetchedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		var p profile.Profile
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, time.Time{}, fmt.Errorf("storage: cannot decode profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("storage: row iteration error: %w", err)
	}

	if len(profiles) == 0 {
		return nil, time.Time{}, nil
	}
	return profiles, time.Unix(fetchedAt, 0), nil
}

// ProfileCount returns the number of cached profiles.
func (s *Store) ProfileCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count profiles: %w", err)
	}
	return n, nil
}

// ClearProfiles empties the cache.
func (s *Store) ClearProfiles(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM profiles"); err != nil {
		return fmt.Errorf("storage: cannot clear profiles: %w", err)
	}
	return nil
}
