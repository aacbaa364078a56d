package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Querier abstracts *sql.DB and *sql.Tx so store methods work in both contexts.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps a SQLite connection holding extraction runs.
type Store struct {
	db     *sql.DB
	q      Querier // active querier: db or tx
	dbPath string
}

// DefaultName is the database file created by Open.
const DefaultName = "runs.db"

// cacheDir returns the default cache directory for databases.
func cacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	dir := filepath.Join(home, ".cache", "i18n-extract")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir cache: %w", err)
	}
	return dir, nil
}

// Open opens or creates the run database in the user cache directory.
func Open() (*Store, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dir, DefaultName))
}

// OpenPath opens a SQLite database at the given path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db, dbPath: dbPath}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory SQLite database (for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	// Every pooled connection to ":memory:" would get its own empty database.
	db.SetMaxOpenConns(1)
	s := &Store{db: db, dbPath: ":memory:"}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// WithTransaction executes fn within a single SQLite transaction.
// The callback receives a transaction-scoped Store; the receiver's q field is
// never mutated, so concurrent readers using s are unaffected.
func (s *Store) WithTransaction(fn func(txStore *Store) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{db: s.db, q: tx, dbPath: s.dbPath}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path, ":memory:" for in-memory stores.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		base TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		started_at TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		messages INTEGER NOT NULL DEFAULT 0,
		plurals INTEGER NOT NULL DEFAULT 0,
		usages INTEGER NOT NULL DEFAULT 0,
		contexts INTEGER NOT NULL DEFAULT 0,
		files_parsed INTEGER NOT NULL DEFAULT 0,
		files_with_messages INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		context TEXT NOT NULL,
		text TEXT NOT NULL,
		plural TEXT,
		UNIQUE(run_id, context, text)
	);

	CREATE TABLE IF NOT EXISTS message_refs (
		message_id INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		file TEXT NOT NULL,
		PRIMARY KEY (message_id, file)
	);

	CREATE TABLE IF NOT EXISTS usage (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		function TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, function)
	);

	CREATE TABLE IF NOT EXISTS files (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		language TEXT NOT NULL,
		hash TEXT NOT NULL,
		PRIMARY KEY (run_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_base ON runs(base);
	CREATE INDEX IF NOT EXISTS idx_messages_run ON messages(run_id);
	CREATE INDEX IF NOT EXISTS idx_message_refs_file ON message_refs(file);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Now returns the current time in ISO 8601 format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
