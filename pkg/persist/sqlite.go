package persist

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore keeps snapshots in a tree_state table, one row per tree key.
type SQLiteStore struct {
	db   *sql.DB
	path string

	stmtLoad *sql.Stmt
	stmtSave *sql.Stmt
}

// NewSQLiteStore opens (or creates) the database at path.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening state database at %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error
	s.stmtLoad, err = s.db.Prepare(`
		SELECT version, expanded, selected, updated_at
		FROM tree_state WHERE tree_key = ?
	`)
	if err != nil {
		return fmt.Errorf("prepare load: %w", err)
	}
	s.stmtSave, err = s.db.Prepare(`
		INSERT INTO tree_state (tree_key, version, expanded, selected, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tree_key) DO UPDATE SET
			version = excluded.version,
			expanded = excluded.expanded,
			selected = excluded.selected,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		s.stmtLoad.Close()
		s.stmtLoad = nil
		return fmt.Errorf("prepare save: %w", err)
	}
	return nil
}

// Load returns the snapshot stored under key. A row whose id lists cannot
// be decoded is reported as absent.
func (s *SQLiteStore) Load(ctx context.Context, key string) (Snapshot, bool, error) {
	var (
		snap               Snapshot
		expanded, selected string
		updated            int64
	)
	err := s.stmtLoad.QueryRowContext(ctx, key).Scan(&snap.Version, &expanded, &selected, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load tree state %q: %w", key, err)
	}
	if json.Unmarshal([]byte(expanded), &snap.Expanded) != nil ||
		json.Unmarshal([]byte(selected), &snap.Selected) != nil {
		return Snapshot{}, false, nil
	}
	snap.UpdatedAt = time.Unix(0, updated).UTC()
	return snap, true, nil
}

// Save upserts the snapshot under key.
func (s *SQLiteStore) Save(ctx context.Context, key string, snapshot Snapshot) error {
	expanded, err := json.Marshal(nonNil(snapshot.Expanded))
	if err != nil {
		return fmt.Errorf("marshal expanded ids: %w", err)
	}
	selected, err := json.Marshal(nonNil(snapshot.Selected))
	if err != nil {
		return fmt.Errorf("marshal selected ids: %w", err)
	}
	updated := snapshot.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	if _, err := s.stmtSave.ExecContext(ctx, key, snapshot.Version, string(expanded), string(selected), updated.UnixNano()); err != nil {
		return fmt.Errorf("save tree state %q: %w", key, err)
	}
	return nil
}

// Close releases prepared statements and the database handle.
func (s *SQLiteStore) Close() error {
	if s.stmtLoad != nil {
		s.stmtLoad.Close()
	}
	if s.stmtSave != nil {
		s.stmtSave.Close()
	}
	return s.db.Close()
}
