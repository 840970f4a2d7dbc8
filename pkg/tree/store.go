// Package tree holds the hierarchical expand/select state model: a read-only
// node store, expansion and selection trackers, and the Controller that
// composes them into the operations a rendering layer invokes.
package tree

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/treekit/pkg/model"
)

// ErrNotFound is returned by Result-style lookups when no node has the id.
var ErrNotFound = errors.New("tree: node not found")

// noParent marks root entries in the arena.
const noParent = -1

// entry is one arena slot. Entries are laid out in pre-order.
type entry struct {
	node   *model.TreeNode
	parent int
	depth  int
}

// Store indexes a forest snapshot for structural queries.
// It never mutates the nodes it was built from.
type Store struct {
	roots   []model.TreeNode
	entries []entry
	index   map[string]int // id -> first entry with that id
	dupes   []string       // ids seen more than once, in encounter order
}

// NewStore builds a Store over roots. The slice is retained, not copied;
// callers hand over a snapshot and must not mutate it afterwards.
func NewStore(roots []model.TreeNode) *Store {
	s := &Store{
		roots: roots,
		index: make(map[string]int),
	}
	for i := range roots {
		s.add(&roots[i], noParent, 0)
	}
	return s
}

func (s *Store) add(node *model.TreeNode, parent, depth int) {
	pos := len(s.entries)
	s.entries = append(s.entries, entry{node: node, parent: parent, depth: depth})
	if _, exists := s.index[node.ID]; exists {
		s.dupes = append(s.dupes, node.ID)
	} else {
		s.index[node.ID] = pos
	}
	for i := range node.Children {
		s.add(&node.Children[i], pos, depth+1)
	}
}

func (s *Store) lookup(id string) (entry, bool) {
	if s == nil {
		return entry{}, false
	}
	pos, ok := s.index[id]
	if !ok {
		return entry{}, false
	}
	return s.entries[pos], true
}

// FindNode returns the node with the given id. Not finding one is an
// ordinary outcome reported through ok.
func (s *Store) FindNode(id string) (model.TreeNode, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return model.TreeNode{}, false
	}
	return *e.node, true
}

// Lookup is FindNode with an error result for callers that want one.
func (s *Store) Lookup(id string) (model.TreeNode, error) {
	node, ok := s.FindNode(id)
	if !ok {
		return model.TreeNode{}, fmt.Errorf("lookup %q: %w", id, ErrNotFound)
	}
	return node, nil
}

// Contains reports whether id addresses a node.
func (s *Store) Contains(id string) bool {
	_, ok := s.lookup(id)
	return ok
}

// HasChildren is true iff the node exists and has at least one child.
func (s *Store) HasChildren(id string) bool {
	e, ok := s.lookup(id)
	return ok && len(e.node.Children) > 0
}

// IsDisabled reports whether the node exists and is disabled.
func (s *Store) IsDisabled(id string) bool {
	e, ok := s.lookup(id)
	return ok && e.node.Disabled
}

// ParentOf returns the id of the structural parent. ok is false for roots
// and unknown ids.
func (s *Store) ParentOf(id string) (string, bool) {
	e, ok := s.lookup(id)
	if !ok || e.parent == noParent {
		return "", false
	}
	return s.entries[e.parent].node.ID, true
}

// DepthOf returns the nesting level of the node (0 = root).
func (s *Store) DepthOf(id string) (int, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return 0, false
	}
	return e.depth, true
}

// Ancestors returns the ids from the root down to the node's parent.
func (s *Store) Ancestors(id string) []string {
	e, ok := s.lookup(id)
	if !ok {
		return nil
	}
	var ancestors []string
	for p := e.parent; p != noParent; p = s.entries[p].parent {
		ancestors = append(ancestors, s.entries[p].node.ID)
	}
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	return ancestors
}

// Roots returns the forest the store was built from.
func (s *Store) Roots() []model.TreeNode {
	if s == nil {
		return nil
	}
	return s.roots
}

// Len returns the total number of nodes, duplicates included.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// DuplicateIDs lists ids that occur more than once. Only the first
// occurrence in pre-order is addressable by id.
func (s *Store) DuplicateIDs() []string {
	if s == nil {
		return nil
	}
	return s.dupes
}

// Walk visits every node in pre-order, collapsed or not. Returning false
// from fn stops the walk.
func (s *Store) Walk(fn func(node model.TreeNode, depth int) bool) {
	if s == nil {
		return
	}
	for _, e := range s.entries {
		if !fn(*e.node, e.depth) {
			return
		}
	}
}
