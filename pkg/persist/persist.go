// Package persist saves and restores the expand/select state of a tree
// across sessions.
//
// Two backends are provided: a JSON file (one file holding every tree keyed
// by name) and SQLite. Both follow the same policy: a missing or corrupted
// record means "use defaults", never a hard failure for the viewer.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/vanderheijden86/treekit/pkg/logging"
	"github.com/vanderheijden86/treekit/pkg/tree"
)

// SnapshotVersion is the current schema version for persisted state.
const SnapshotVersion = 1

// Snapshot is the persisted form of a tree's auxiliary sets.
type Snapshot struct {
	Version   int       `json:"version"`
	Expanded  []string  `json:"expanded"`
	Selected  []string  `json:"selected"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State converts the snapshot into controller state.
func (s Snapshot) State() tree.State {
	return tree.State{Expanded: s.Expanded, Selected: s.Selected}
}

// NewSnapshot stamps state with the current version and time.
func NewSnapshot(state tree.State) Snapshot {
	return Snapshot{
		Version:   SnapshotVersion,
		Expanded:  nonNil(state.Expanded),
		Selected:  nonNil(state.Selected),
		UpdatedAt: time.Now().UTC(),
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Store loads and saves one snapshot per tree key.
type Store interface {
	Load(ctx context.Context, key string) (snapshot Snapshot, ok bool, err error)
	Save(ctx context.Context, key string, snapshot Snapshot) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns a Store for the named backend rooted at path.
func Open(backend, path string, log *logging.Logger) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(path, log), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}

// Restore loads the snapshot for key and syncs it into c. Unknown ids in the
// snapshot are dropped by the controller. It reports whether a snapshot was found.
func Restore(ctx context.Context, c *tree.Controller, store Store, key string) (bool, error) {
	snap, ok, err := store.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("restore %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if snap.Version > SnapshotVersion {
		return false, fmt.Errorf("restore %q: unsupported snapshot version %d", key, snap.Version)
	}
	c.Sync(snap.State())
	return true, nil
}

// AutoSave registers a listener on c that writes the controller state to
// store after every change. Save errors are logged, not returned.
func AutoSave(c *tree.Controller, store Store, key string, log *logging.Logger) {
	log = log.With("persist")
	c.AddListener(tree.ListenerFunc(func(event tree.ChangeEvent) {
		snap := NewSnapshot(c.State())
		if err := store.Save(context.Background(), key, snap); err != nil {
			log.Error(err, "failed to save tree state", "key", key, "change", event.Kind.String())
			return
		}
		log.Debug("saved tree state", "key", key, "expanded", len(snap.Expanded), "selected", len(snap.Selected))
	}))
}
