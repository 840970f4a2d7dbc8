package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/treekit/pkg/logging"
)

// stateFileName is the default filename for persisted tree state
const stateFileName = "tree-state.json"

// DefaultStatePath returns the path to the state file inside dir.
// An empty dir means ".treekit" in the current directory.
func DefaultStatePath(dir string) string {
	if dir == "" {
		dir = ".treekit"
	}
	return filepath.Join(dir, stateFileName)
}

// stateFile is the on-disk layout:
//
//	{
//	  "version": 1,
//	  "trees": {
//	    "docs": {"version": 1, "expanded": ["r"], "selected": ["a1"], "updated_at": "..."}
//	  }
//	}
type stateFile struct {
	Version int                 `json:"version"`
	Trees   map[string]Snapshot `json:"trees"`
}

// FileStore keeps every tree's snapshot in a single JSON file.
type FileStore struct {
	path string
	log  *logging.Logger
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on first save.
func NewFileStore(path string, log *logging.Logger) *FileStore {
	if path == "" {
		path = DefaultStatePath("")
	}
	return &FileStore{path: path, log: log.With("persist")}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

// read returns the decoded file, or an empty one if it is missing or corrupt.
func (s *FileStore) read() stateFile {
	empty := stateFile{Version: SnapshotVersion, Trees: make(map[string]Snapshot)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		// File doesn't exist = first run, use defaults
		return empty
	}

	var file stateFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.log.Warn("invalid tree state file, using defaults", "path", s.path, "error", err.Error())
		return empty
	}
	if file.Trees == nil {
		file.Trees = make(map[string]Snapshot)
	}
	return file
}

// Load returns the snapshot stored under key.
func (s *FileStore) Load(ctx context.Context, key string) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.read().Trees[key]
	return snap, ok, nil
}

// Save writes the snapshot under key, replacing the file atomically.
func (s *FileStore) Save(ctx context.Context, key string, snapshot Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.read()
	file.Version = SnapshotVersion
	file.Trees[key] = snapshot

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tree state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tree-state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write tree state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close tree state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write tree state to %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
