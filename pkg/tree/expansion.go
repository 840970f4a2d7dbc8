package tree

// idSet is an insertion-ordered set of node ids.
type idSet struct {
	order []string
	index map[string]int
}

func newIDSet(ids []string) idSet {
	s := idSet{index: make(map[string]int, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *idSet) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) add(id string) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.order)
	s.order = append(s.order, id)
	return true
}

func (s *idSet) remove(id string) bool {
	pos, ok := s.index[id]
	if !ok {
		return false
	}
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.order); i++ {
		s.index[s.order[i]] = i
	}
	return true
}

func (s *idSet) ids() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *idSet) len() int {
	return len(s.order)
}

// ExpansionTracker holds the ids of expanded nodes.
// It does not know about the tree; the Controller only toggles expandable nodes.
type ExpansionTracker struct {
	set idSet
}

// NewExpansionTracker creates a tracker seeded with ids.
func NewExpansionTracker(ids ...string) *ExpansionTracker {
	return &ExpansionTracker{set: newIDSet(ids)}
}

// IsExpanded reports whether id is in the expanded set.
func (t *ExpansionTracker) IsExpanded(id string) bool {
	return t.set.has(id)
}

// Toggle inserts id if absent and removes it if present.
func (t *ExpansionTracker) Toggle(id string) {
	if !t.set.remove(id) {
		t.set.add(id)
	}
}

// Expand adds id; it returns false if it was already expanded.
func (t *ExpansionTracker) Expand(id string) bool {
	return t.set.add(id)
}

// Collapse removes id; it returns false if it was not expanded.
func (t *ExpansionTracker) Collapse(id string) bool {
	return t.set.remove(id)
}

// SetExpanded replaces the whole set.
func (t *ExpansionTracker) SetExpanded(ids []string) {
	t.set = newIDSet(ids)
}

// IDs returns the expanded ids in the order they were expanded.
func (t *ExpansionTracker) IDs() []string {
	return t.set.ids()
}

// Len returns the number of expanded ids.
func (t *ExpansionTracker) Len() int {
	return t.set.len()
}
