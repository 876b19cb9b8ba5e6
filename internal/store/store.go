package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/knelavan/skilltime/internal/config"
	"github.com/knelavan/skilltime/internal/vault"
)

// StateKey is the fixed key the whole AppState blob lives under.
const StateKey = "skill_time_capsule_state"

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Store durably round-trips the full AppState as a single JSON blob in
// SQLite. Every committed mutation overwrites the whole blob; there is
// no delta persistence and no merge-on-write.
type Store struct {
	db      *sql.DB
	baseDir string
}

// Open initializes the SQLite database at baseDir/skilltime.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.skilltime.
func Open(baseDir string) (*Store, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	dbPath := filepath.Join(baseDir, "skilltime.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return &Store{db: db, baseDir: baseDir}, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func (s *Store) ConfigurePool(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		s.db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		s.db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// BaseDir returns the directory the store was opened in.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted AppState. A missing or unparseable blob is
// treated as "no prior state" and yields the default state; it is never
// surfaced as an error. Errors are reserved for database-level failures.
func (s *Store) Load() (*vault.AppState, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM vault_state WHERE key = ?`, StateKey).Scan(&data)
	if err == sql.ErrNoRows {
		return vault.DefaultState(time.Now().UnixMilli()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	state := &vault.AppState{}
	if err := json.Unmarshal([]byte(data), state); err != nil {
		// Corrupt blob: fall back to defaults rather than failing the caller
		return vault.DefaultState(time.Now().UnixMilli()), nil
	}

	normalize(state)
	return state, nil
}

// Save serializes and writes the full state under StateKey, replacing
// whatever was there before.
func (s *Store) Save(state *vault.AppState) error {
	normalize(state)
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO vault_state (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		StateKey, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Mutate is the single authoritative mutation entry point: it loads the
// state, applies fn, and persists the result in full. Every state
// transition in the application goes through here.
func (s *Store) Mutate(fn func(*vault.AppState) error) (*vault.AppState, error) {
	state, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := s.Save(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset replaces the persisted state with the default state.
func (s *Store) Reset() (*vault.AppState, error) {
	state := vault.DefaultState(time.Now().UnixMilli())
	if err := s.Save(state); err != nil {
		return nil, err
	}
	return state, nil
}

// normalize keeps slice fields non-nil so the persisted shape is stable.
func normalize(state *vault.AppState) {
	if state.Skills == nil {
		state.Skills = []vault.Skill{}
	}
	if state.Capsules == nil {
		state.Capsules = []vault.Capsule{}
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := getUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: key-value state table
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS vault_state (
		  key        TEXT PRIMARY KEY,
		  data       TEXT NOT NULL,
		  updated_at INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// getUserVersion returns the current schema version (user_version pragma).
func getUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// setUserVersion sets the schema version (user_version pragma).
func setUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
