package model

import (
	"fmt"
	"strings"
)

// TreeNode represents one entry in a hierarchical data set.
// Children are owned by value; a forest is a plain []TreeNode.
type TreeNode struct {
	ID       string     `json:"id" yaml:"id" validate:"required,node_id"`
	Label    string     `json:"label,omitempty" yaml:"label,omitempty"`
	Children []TreeNode `json:"children,omitempty" yaml:"children,omitempty" validate:"dive"`
	Disabled bool       `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// IsLeaf returns true if the node has no children
func (n TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// DisplayLabel returns the label, falling back to the ID when the label is empty
func (n TreeNode) DisplayLabel() string {
	if strings.TrimSpace(n.Label) == "" {
		return n.ID
	}
	return n.Label
}

// Clone creates a deep copy of the node and its descendants
func (n TreeNode) Clone() TreeNode {
	clone := n
	if n.Children != nil {
		clone.Children = make([]TreeNode, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Validate checks the node and its subtree for empty or duplicate IDs.
func (n *TreeNode) Validate() error {
	return ValidateForest([]TreeNode{*n})
}

// DuplicateIDError reports an ID that appears more than once in a forest.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate node id %q", e.ID)
}

// ValidateForest checks that every node in the forest has a non-empty, unique ID.
func ValidateForest(roots []TreeNode) error {
	seen := make(map[string]bool)
	var check func(nodes []TreeNode, path string) error
	check = func(nodes []TreeNode, path string) error {
		for i := range nodes {
			node := &nodes[i]
			where := fmt.Sprintf("%s[%d]", path, i)
			if strings.TrimSpace(node.ID) == "" {
				return fmt.Errorf("%s: node ID cannot be empty", where)
			}
			if seen[node.ID] {
				return fmt.Errorf("%s: %w", where, &DuplicateIDError{ID: node.ID})
			}
			seen[node.ID] = true
			if err := check(node.Children, where+".children"); err != nil {
				return err
			}
		}
		return nil
	}
	return check(roots, "nodes")
}

// CloneForest deep-copies a forest.
func CloneForest(roots []TreeNode) []TreeNode {
	if roots == nil {
		return nil
	}
	out := make([]TreeNode, len(roots))
	for i, root := range roots {
		out[i] = root.Clone()
	}
	return out
}

// Count returns the total number of nodes in the forest.
func Count(roots []TreeNode) int {
	total := 0
	for _, root := range roots {
		total += 1 + Count(root.Children)
	}
	return total
}

// SelectionMode controls how selecting a node affects the selection set
type SelectionMode string

const (
	SelectSingle SelectionMode = "single"
	SelectMulti  SelectionMode = "multi"
)

// IsValid returns true if the mode is a recognized value
func (m SelectionMode) IsValid() bool {
	switch m {
	case SelectSingle, SelectMulti:
		return true
	}
	return false
}

// ParseSelectionMode converts user input into a SelectionMode.
// Matching is case-insensitive; the empty string maps to single.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return SelectSingle, nil
	case "multi", "multiple":
		return SelectMulti, nil
	}
	return "", fmt.Errorf("invalid selection mode: %s", s)
}
