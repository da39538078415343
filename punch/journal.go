package punch

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/treepunch/treepunch/logging"
)

const journalSchemaVersion = 1

const journalSchema = `
CREATE TABLE IF NOT EXISTS punches (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at    INTEGER NOT NULL,
    duration_ms   INTEGER NOT NULL,
    external_root TEXT NOT NULL,
    work_root     TEXT NOT NULL,
    transferred   INTEGER NOT NULL,
    added         INTEGER NOT NULL,
    moved         INTEGER NOT NULL,
    removed       INTEGER NOT NULL,
    outcome       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Journal records punch runs in a SQLite database so repeated punches
// against the same work copy leave an audit trail.
type Journal struct {
	db *sql.DB
}

// JournalRecord is one row of the punch history.
type JournalRecord struct {
	ID           int64
	StartedAt    time.Time
	Duration     time.Duration
	ExternalRoot string
	WorkRoot     string
	Transferred  int
	Added        int
	Moved        int
	Removed      int
	Outcome      string
}

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	l := logging.Sub("journal")
	l.Info("opening punch journal", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	if err != nil {
		// meta table doesn't exist or no row — fresh database
		if _, execErr := db.Exec(journalSchema); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("create journal schema: %w", execErr)
		}
		if _, execErr := db.Exec("INSERT INTO meta (key, value) VALUES ('schema_version', ?)", journalSchemaVersion); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("set schema version: %w", execErr)
		}
		l.Info("journal schema created", "version", journalSchemaVersion)
	} else if version != journalSchemaVersion {
		db.Close()
		return nil, fmt.Errorf("journal schema version is %d but %d is required", version, journalSchemaVersion)
	}

	return &Journal{db: db}, nil
}

// Record appends one punch run. outcome is "ok" for a successful punch or
// the error text of a failed one.
func (j *Journal) Record(startedAt time.Time, externalRoot, workRoot string, result Result, outcome string) error {
	_, err := j.db.Exec(`
		INSERT INTO punches (started_at, duration_ms, external_root, work_root, transferred, added, moved, removed, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		startedAt.Unix(), result.Duration.Milliseconds(), externalRoot, workRoot,
		result.Transferred, result.Added, result.Moved, result.Removed, outcome,
	)
	if err != nil {
		return fmt.Errorf("record punch: %w", err)
	}
	return nil
}

// Recent returns up to limit punch records, newest first.
func (j *Journal) Recent(limit int) ([]JournalRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, started_at, duration_ms, external_root, work_root, transferred, added, moved, removed, outcome
		FROM punches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var records []JournalRecord
	for rows.Next() {
		var r JournalRecord
		var startedAt int64
		var durationMs int64
		if err := rows.Scan(&r.ID, &startedAt, &durationMs, &r.ExternalRoot, &r.WorkRoot,
			&r.Transferred, &r.Added, &r.Moved, &r.Removed, &r.Outcome); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		r.StartedAt = time.Unix(startedAt, 0)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
