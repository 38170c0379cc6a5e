// Package storage persists cases, evidence files and bundle entries in a
// SQLite database.
package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"cbundle/index"
)

// Memory opens private in-memory database, useful for tests and dry runs.
const Memory = ":memory:"

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	case_type    TEXT NOT NULL CHECK(case_type IN ('affidavit', 'bundle')),
	content_json TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id            TEXT PRIMARY KEY,
	case_id       TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	path          TEXT NOT NULL,
	original_name TEXT NOT NULL,
	page_count    INTEGER CHECK(page_count IS NULL OR page_count >= 1),
	file_size     INTEGER NOT NULL DEFAULT 0,
	metadata_json TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	id             TEXT PRIMARY KEY,
	case_id        TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	sequence_order INTEGER NOT NULL,
	row_type       TEXT NOT NULL CHECK(row_type IN ('evidence-file', 'cover-page', 'divider', 'section-break', 'component-reference')),
	file_id        TEXT REFERENCES files(id) ON DELETE CASCADE,
	content        TEXT,
	section_label  TEXT,
	label_override TEXT,
	page_count     INTEGER NOT NULL CHECK(page_count >= 1),
	late           INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	UNIQUE(case_id, sequence_order)
);

CREATE INDEX IF NOT EXISTS files_case ON files(case_id);
CREATE INDEX IF NOT EXISTS entries_file ON entries(file_id);
`

// DB is a single connection to bundle database, safe for concurrent use.
type DB struct {
	log  *zap.Logger
	path string

	mu   sync.Mutex
	conn *sqlite.Conn
	now  func() time.Time
}

// Open opens (creating if necessary) database at path and brings its schema
// up to date.
func Open(path string, log *zap.Logger) (*DB, error) {
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}
	if path == Memory {
		flags = append(flags, sqlite.OpenMemory)
	} else {
		flags = append(flags, sqlite.OpenWAL)
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("unable to open database %q: %w", path, err)
	}

	db := &DB{log: log.Named("storage"), path: path, conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare database %q: %w", path, err)
	}
	db.log.Debug("Database opened", zap.String("path", path))
	return db, nil
}

// Path returns database location.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

func (db *DB) migrate() error {
	// foreign keys could not be enabled inside transaction
	if err := sqlitex.ExecuteTransient(db.conn, "PRAGMA foreign_keys = ON;", nil); err != nil {
		return err
	}

	var version int
	err := sqlitex.ExecuteTransient(db.conn, "PRAGMA user_version;", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, schemaVersion)
	}
	if err := sqlitex.ExecuteScript(db.conn, schema, nil); err != nil {
		return err
	}
	return sqlitex.ExecuteTransient(db.conn, fmt.Sprintf("PRAGMA user_version = %d;", schemaVersion), nil)
}

// do runs fn holding connection lock.
func (db *DB) do(fn func(conn *sqlite.Conn) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn == nil {
		return errors.New("database is closed")
	}
	return fn(db.conn)
}

func (db *DB) stamp() string {
	return formatTime(db.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullable binds empty strings as NULL.
func nullable(s string) any {
	if len(s) == 0 {
		return nil
	}
	return s
}

// constraintErr converts constraint violations into validation errors, other
// errors are wrapped with op.
func constraintErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *index.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	if sqlite.ErrCode(err).ToPrimary() == sqlite.ResultConstraint {
		return &index.ValidationError{Op: op, Reason: err.Error()}
	}
	return fmt.Errorf("%s: %w", op, err)
}
