package tree

import "github.com/vanderheijden86/treekit/pkg/model"

// SelectionTracker holds the ids of selected nodes.
//
// In single mode Select replaces the set with {id}, so selecting the current
// node again keeps it selected. In multi mode Select toggles membership.
// When built with a Store, disabled and unknown nodes are never admitted.
type SelectionTracker struct {
	mode  model.SelectionMode
	store *Store
	set   idSet
}

// NewSelectionTracker creates an empty tracker. store may be nil, in which
// case the caller is responsible for rejecting disabled nodes.
func NewSelectionTracker(mode model.SelectionMode, store *Store) *SelectionTracker {
	if !mode.IsValid() {
		mode = model.SelectSingle
	}
	return &SelectionTracker{mode: mode, store: store, set: newIDSet(nil)}
}

// Mode returns the current selection mode.
func (t *SelectionTracker) Mode() model.SelectionMode {
	return t.mode
}

// SetMode switches modes. Going from multi to single keeps only the
// earliest selected id.
func (t *SelectionTracker) SetMode(mode model.SelectionMode) {
	if !mode.IsValid() || mode == t.mode {
		return
	}
	t.mode = mode
	if mode == model.SelectSingle && t.set.len() > 1 {
		t.set = newIDSet(t.set.order[:1])
	}
}

// SetStore attaches the store used to reject disabled nodes.
func (t *SelectionTracker) SetStore(store *Store) {
	t.store = store
}

func (t *SelectionTracker) admissible(id string) bool {
	if t.store == nil {
		return true
	}
	node, ok := t.store.FindNode(id)
	return ok && !node.Disabled
}

// IsSelected reports whether id is in the selected set.
func (t *SelectionTracker) IsSelected(id string) bool {
	return t.set.has(id)
}

// Select applies the mode's semantics to id and reports whether the set changed.
func (t *SelectionTracker) Select(id string) bool {
	if !t.admissible(id) {
		return false
	}
	if t.mode == model.SelectMulti {
		if !t.set.remove(id) {
			t.set.add(id)
		}
		return true
	}
	if t.set.len() == 1 && t.set.has(id) {
		return false
	}
	t.set = newIDSet([]string{id})
	return true
}

// SetSelected replaces the whole set. Inadmissible ids are dropped and in
// single mode only the first admissible id is kept.
func (t *SelectionTracker) SetSelected(ids []string) {
	next := newIDSet(nil)
	for _, id := range ids {
		if !t.admissible(id) {
			continue
		}
		next.add(id)
		if t.mode == model.SelectSingle {
			break
		}
	}
	t.set = next
}

// Clear empties the selection.
func (t *SelectionTracker) Clear() {
	t.set = newIDSet(nil)
}

// IDs returns the selected ids in selection order.
func (t *SelectionTracker) IDs() []string {
	return t.set.ids()
}

// Len returns the number of selected ids.
func (t *SelectionTracker) Len() int {
	return t.set.len()
}
