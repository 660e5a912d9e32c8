package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gmelani/medtrack/internal/record"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Storage keys. Each holds a JSON array of the corresponding entity.
const (
	KeyVisits      = "visits"
	KeyExams       = "exams"
	KeySpecialists = "specialists"
)

// Init initializes the SQLite database at baseDir/medtrack.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.medtrack.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Create exports subdirectory
	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "medtrack.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := getUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: single key-value table. Collections live as
	// serialized arrays under the keys visits/exams/specialists.
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS records (
		  key        TEXT PRIMARY KEY,
		  value      TEXT NOT NULL,
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

// getUserVersion reads PRAGMA user_version.
func getUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read user_version: %w", err)
	}
	return version, nil
}

// setUserVersion writes PRAGMA user_version.
func setUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d;", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

// Load reads the three collections into a snapshot. A missing key
// loads as an empty collection, except specialists: on first run the
// default specialist set is seeded and persisted.
func Load(db *sql.DB) (*record.Snapshot, error) {
	snap := &record.Snapshot{}

	if err := loadKey(db, KeyVisits, &snap.Visits); err != nil {
		return nil, err
	}
	if err := loadKey(db, KeyExams, &snap.Exams); err != nil {
		return nil, err
	}

	found, err := loadKeyFound(db, KeySpecialists, &snap.Specialists)
	if err != nil {
		return nil, err
	}
	if !found {
		snap.Specialists = record.DefaultSpecialists()
		if err := Save(db, snap); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// Save persists all three collections in one transaction. No
// intermediate state is observably written.
func Save(db *sql.DB, snap *record.Snapshot) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().Unix()
	for key, v := range map[string]any{
		KeyVisits:      emptyNotNil(snap.Visits),
		KeyExams:       emptyNotNil(snap.Exams),
		KeySpecialists: emptyNotNil(snap.Specialists),
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", key, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, string(data), now); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// loadKey reads one collection key, leaving dest untouched if absent.
func loadKey(db *sql.DB, key string, dest any) error {
	_, err := loadKeyFound(db, key, dest)
	return err
}

// loadKeyFound reads one collection key and reports whether it existed.
func loadKeyFound(db *sql.DB, key string, dest any) (bool, error) {
	var value string
	err := db.QueryRow("SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return true, nil
}

// emptyNotNil keeps stored arrays as [] rather than null.
func emptyNotNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
