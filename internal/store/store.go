package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// connParams are applied by the driver to every connection it opens.
const connParams = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=1"

// timeLayout is how timestamps are stored in TEXT columns.
const timeLayout = time.RFC3339Nano

// upgrades bring a database written by an older build up to schema.sql.
// upgrades[i] moves user_version i+1 to i+2. A fresh database is created
// from schema.sql directly and stamped with schemaVersion.
var upgrades = []func(*sql.Tx) error{
	// 1 -> 2: revisions remember the journal position they were taken at,
	// so replay can find the edits between two snapshots. Older rows
	// read as position 0.
	addColumn("revisions", "journal_seq INTEGER NOT NULL DEFAULT 0"),
	// 2 -> 3: journal rows written while undoing or redoing are flagged.
	addColumn("journal", "replay INTEGER NOT NULL DEFAULT 0"),
}

// schemaVersion is the user_version of a database matching schema.sql.
var schemaVersion = len(upgrades) + 1

// Store provides durable storage for project revisions and the change journal.
type Store struct {
	db *sql.DB
}

// Open creates or opens the revision store at path and brings its schema
// up to date. A single connection is kept: SQLite allows one writer and
// the journal writes from the editor bus.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("revision store schema version %d is newer than supported version %d", version, schemaVersion)
	}

	if version == 0 {
		if _, err := db.Exec(schemaSQL); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		return setVersion(db, schemaVersion)
	}

	for v := version; v < schemaVersion; v++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := upgrades[v-1](tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upgrading schema %d -> %d: %w", v, v+1, err)
		}
		if err := setVersion(tx, v+1); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("upgrading schema %d -> %d: %w", v, v+1, err)
		}
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setVersion(db execer, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}
	return nil
}

func addColumn(table, column string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		_, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, column))
		return err
	}
}
