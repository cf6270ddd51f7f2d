// Package state persists preferences and clipboard history in SQLite.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/clnbrd/clnbrd/internal/utils"

	_ "modernc.org/sqlite"
)

var (
	db         *sql.DB
	dbMu       sync.Mutex
	dbPath     string
	configured bool
)

// migrations[i] moves the schema from user_version i to i+1.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value BLOB,
		updated_at INTEGER
	);`,
	`CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		source TEXT,
		preview TEXT,
		plain BLOB,
		rtf BLOB,
		html BLOB,
		image BLOB,
		image_type TEXT,
		size INTEGER,
		hash TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);`,
}

// Configure sets the path for the SQLite database
func Configure(path string) {
	dbMu.Lock()
	defer dbMu.Unlock()
	dbPath = path
	configured = true
}

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The watcher and one-shot commands share the file; a single
	// connection keeps the pragmas below in effect.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec("PRAGMA busy_timeout = 5000; PRAGMA journal_mode = WAL;"); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	if err := migrate(d); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func schemaVersion(d *sql.DB) (int, error) {
	var v int
	err := d.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

// migrate applies every pending migration, each in its own transaction.
func migrate(d *sql.DB) error {
	version, err := schemaVersion(d)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema v%d is newer than this build supports (v%d)", version, len(migrations))
	}
	for v := version; v < len(migrations); v++ {
		tx, err := d.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("schema v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("schema v%d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		utils.Debug("State DB migrated to schema v%d", v+1)
	}
	return nil
}

func initDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db != nil {
		return nil
	}
	if !configured || dbPath == "" {
		return fmt.Errorf("state database not configured: call state.Configure() first")
	}
	d, err := openDB(dbPath)
	if err != nil {
		return err
	}
	db = d
	return nil
}

// CloseDB closes the database connection
func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db != nil {
		db.Close()
		db = nil
	}
}

// GetDB returns the database instance, initializing it if necessary
func GetDB() (*sql.DB, error) {
	dbMu.Lock()
	d := db
	dbMu.Unlock()
	if d != nil {
		return d, nil
	}
	if err := initDB(); err != nil {
		return nil, err
	}
	dbMu.Lock()
	defer dbMu.Unlock()
	return db, nil
}

func getDBHelper() *sql.DB {
	d, err := GetDB()
	if err != nil {
		utils.Debug("State DB Error: %v", err)
		return nil
	}
	return d
}

func withTx(fn func(*sql.Tx) error) error {
	d := getDBHelper()
	if d == nil {
		return fmt.Errorf("database not initialized")
	}
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
