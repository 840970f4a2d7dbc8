package tree

import (
	"slices"

	"github.com/vanderheijden86/treekit/pkg/logging"
	"github.com/vanderheijden86/treekit/pkg/model"
)

// State is a snapshot of the two auxiliary sets.
type State struct {
	Expanded []string `json:"expanded" yaml:"expanded"`
	Selected []string `json:"selected" yaml:"selected"`
}

// StateSource supplies the caller-owned state of a controlled Controller.
// It is consulted before every operation.
type StateSource func() State

// Ownership says who holds the authoritative expand/select state.
type Ownership int

const (
	// Uncontrolled controllers own their state.
	Uncontrolled Ownership = iota
	// Controlled controllers mirror state pulled from a StateSource and hand
	// every change back through listeners for the caller to persist.
	Controlled
)

func (o Ownership) String() string {
	if o == Controlled {
		return "controlled"
	}
	return "uncontrolled"
}

// VisibleNode is one row of the visible projection.
type VisibleNode struct {
	Node  model.TreeNode
	Depth int
}

// NodeState describes a node together with its position and flags, as seen
// by filter predicates.
type NodeState struct {
	Node     model.TreeNode
	Depth    int
	Expanded bool
	Selected bool
}

// Predicate decides whether a node matches a filter.
type Predicate func(NodeState) bool

// Option configures a Controller.
type Option func(*Controller)

// WithMode sets the selection mode (single by default).
func WithMode(mode model.SelectionMode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// WithInitialExpanded seeds the expansion set of an uncontrolled controller.
func WithInitialExpanded(ids ...string) Option {
	return func(c *Controller) {
		c.initial.Expanded = append(c.initial.Expanded, ids...)
	}
}

// WithInitialSelected seeds the selection set of an uncontrolled controller.
func WithInitialSelected(ids ...string) Option {
	return func(c *Controller) {
		c.initial.Selected = append(c.initial.Selected, ids...)
	}
}

// WithListener registers a change listener.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

// WithControlledState makes the controller mirror caller-owned state.
func WithControlledState(source StateSource) Option {
	return func(c *Controller) {
		c.source = source
	}
}

// WithLogger sets the logger used for ignored operations and pruning.
func WithLogger(log *logging.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// Controller is the entry point callers drive. All operations are
// synchronous and run to completion before listeners are notified.
// A Controller is not safe for concurrent use.
type Controller struct {
	store     *Store
	expansion *ExpansionTracker
	selection *SelectionTracker
	listeners Listeners
	source    StateSource
	mode      model.SelectionMode
	initial   State
	log       *logging.Logger
}

// New builds a Controller over roots. The forest is treated as an immutable
// snapshot; use SetNodes to replace it.
func New(roots []model.TreeNode, opts ...Option) *Controller {
	c := &Controller{mode: model.SelectSingle}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	c.log = c.log.With("tree")

	c.store = NewStore(roots)
	c.warnDuplicates()
	c.expansion = NewExpansionTracker()
	c.selection = NewSelectionTracker(c.mode, c.store)
	c.mode = c.selection.Mode()

	if c.source == nil {
		c.apply(c.initial)
	}
	c.initial = State{}
	return c
}

func (c *Controller) warnDuplicates() {
	for _, id := range c.store.DuplicateIDs() {
		c.log.Warn("duplicate node id, later occurrence is not addressable", "id", id)
	}
}

// apply overwrites both trackers, dropping ids that cannot be members.
func (c *Controller) apply(state State) {
	c.expansion.SetExpanded(c.expandable(state.Expanded))
	c.selection.SetSelected(state.Selected)
}

func (c *Controller) expandable(ids []string) []string {
	set := newIDSet(nil)
	for _, id := range ids {
		if c.store.HasChildren(id) {
			set.add(id)
		}
	}
	return set.ids()
}

// pull refreshes the trackers from the caller in controlled mode.
func (c *Controller) pull() {
	if c.source != nil {
		c.apply(c.source())
	}
}

func (c *Controller) emit(kind ChangeKind) {
	if !c.listeners.Enabled() {
		return
	}
	var ids []string
	if kind == ExpansionChanged {
		ids = c.expansion.IDs()
	} else {
		ids = c.selection.IDs()
	}
	c.listeners.Notify(ChangeEvent{Kind: kind, IDs: ids})
}

// AddListener registers another change listener.
func (c *Controller) AddListener(l Listener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

// Ownership reports whether the controller mirrors caller-owned state.
func (c *Controller) Ownership() Ownership {
	if c.source != nil {
		return Controlled
	}
	return Uncontrolled
}

// Store exposes the read-only node store of the current snapshot.
func (c *Controller) Store() *Store {
	return c.store
}

// Mode returns the selection mode.
func (c *Controller) Mode() model.SelectionMode {
	return c.selection.Mode()
}

// SetMode switches the selection mode, notifying if the selection shrank.
func (c *Controller) SetMode(mode model.SelectionMode) {
	c.pull()
	before := c.selection.Len()
	c.selection.SetMode(mode)
	if c.selection.Len() != before {
		c.emit(SelectionChanged)
	}
}

// ToggleExpand flips the expansion of an expandable node. Unknown ids and
// leaves are ignored without notification.
func (c *Controller) ToggleExpand(id string) {
	c.pull()
	if !c.store.Contains(id) {
		c.log.Debug("toggle expand ignored", "id", id, "reason", "not found")
		return
	}
	if !c.store.HasChildren(id) {
		c.log.Debug("toggle expand ignored", "id", id, "reason", "leaf")
		return
	}
	c.expansion.Toggle(id)
	c.emit(ExpansionChanged)
}

// ToggleSelect applies the selection mode to a node. Unknown and disabled
// nodes are ignored, and nothing is emitted when the selection is unchanged.
func (c *Controller) ToggleSelect(id string) {
	c.pull()
	node, ok := c.store.FindNode(id)
	if !ok {
		c.log.Debug("toggle select ignored", "id", id, "reason", "not found")
		return
	}
	if node.Disabled {
		c.log.Debug("toggle select ignored", "id", id, "reason", "disabled")
		return
	}
	if c.selection.Select(id) {
		c.emit(SelectionChanged)
	}
}

// ClearSelection empties the selection, notifying if it was non-empty.
func (c *Controller) ClearSelection() {
	c.pull()
	if c.selection.Len() == 0 {
		return
	}
	c.selection.Clear()
	c.emit(SelectionChanged)
}

// IsExpanded reports whether id is expanded.
func (c *Controller) IsExpanded(id string) bool {
	c.pull()
	return c.expansion.IsExpanded(id)
}

// IsSelected reports whether id is selected.
func (c *Controller) IsSelected(id string) bool {
	c.pull()
	return c.selection.IsSelected(id)
}

// ExpandedIDs returns the expanded ids in expansion order.
func (c *Controller) ExpandedIDs() []string {
	c.pull()
	return c.expansion.IDs()
}

// SelectedIDs returns the selected ids in selection order.
func (c *Controller) SelectedIDs() []string {
	c.pull()
	return c.selection.IDs()
}

// State returns a copy of both sets.
func (c *Controller) State() State {
	c.pull()
	return State{Expanded: c.expansion.IDs(), Selected: c.selection.IDs()}
}

// Sync overwrites the internal sets with an externally supplied value.
// No notification is sent: the caller already knows the value.
func (c *Controller) Sync(state State) {
	c.apply(state)
}

// SetNodes replaces the forest snapshot. Expanded and selected ids that no
// longer qualify are pruned, with a notification for each set that changed.
func (c *Controller) SetNodes(roots []model.TreeNode) {
	c.pull()
	prevExpanded := c.expansion.IDs()
	prevSelected := c.selection.IDs()

	c.store = NewStore(roots)
	c.warnDuplicates()
	c.selection.SetStore(c.store)
	c.apply(State{Expanded: prevExpanded, Selected: prevSelected})

	if pruned := len(prevExpanded) - c.expansion.Len(); pruned > 0 {
		c.log.Debug("pruned stale expanded ids", "count", pruned)
		c.emit(ExpansionChanged)
	}
	if pruned := len(prevSelected) - c.selection.Len(); pruned > 0 {
		c.log.Debug("pruned stale selected ids", "count", pruned)
		c.emit(SelectionChanged)
	}
}

// VisibleNodes returns the depth-annotated rows to render: every root at
// depth 0, and the children of each expanded node directly after it, in
// source order. The projection is recomputed on every call.
func (c *Controller) VisibleNodes() []VisibleNode {
	c.pull()
	var out []VisibleNode
	var visit func(nodes []model.TreeNode, depth int)
	visit = func(nodes []model.TreeNode, depth int) {
		for _, node := range nodes {
			out = append(out, VisibleNode{Node: node, Depth: depth})
			if c.expansion.IsExpanded(node.ID) {
				visit(node.Children, depth+1)
			}
		}
	}
	visit(c.store.Roots(), 0)
	return out
}

// expandSet replaces the expansion set and notifies if membership changed.
func (c *Controller) expandSet(ids []string) {
	before := c.expansion.IDs()
	after := c.expandable(ids)
	if sameMembers(before, after) {
		return
	}
	c.expansion.SetExpanded(after)
	c.emit(ExpansionChanged)
}

// ExpandAll expands every node that has children.
func (c *Controller) ExpandAll() {
	c.pull()
	ids := c.expansion.IDs()
	c.store.Walk(func(node model.TreeNode, _ int) bool {
		if !node.IsLeaf() && !c.expansion.IsExpanded(node.ID) {
			ids = append(ids, node.ID)
		}
		return true
	})
	c.expandSet(ids)
}

// CollapseAll empties the expansion set.
func (c *Controller) CollapseAll() {
	c.pull()
	c.expandSet(nil)
}

// ToggleExpandCollapseAll expands everything if any expandable node is
// collapsed, and collapses everything otherwise.
func (c *Controller) ToggleExpandCollapseAll() {
	c.pull()
	anyCollapsed := false
	c.store.Walk(func(node model.TreeNode, _ int) bool {
		if !node.IsLeaf() && !c.expansion.IsExpanded(node.ID) {
			anyCollapsed = true
			return false
		}
		return true
	})
	if anyCollapsed {
		c.ExpandAll()
	} else {
		c.CollapseAll()
	}
}

// ExpandToLevel makes depths 0..level-1 visible: level 1 shows only roots,
// level 2 roots and their children, and so on. Deeper nodes are collapsed.
func (c *Controller) ExpandToLevel(level int) {
	c.pull()
	var ids []string
	c.store.Walk(func(node model.TreeNode, depth int) bool {
		if !node.IsLeaf() && depth < level-1 {
			ids = append(ids, node.ID)
		}
		return true
	})
	c.expandSet(ids)
}

// Reveal expands every ancestor of id so the node becomes visible.
// Unknown ids are ignored.
func (c *Controller) Reveal(id string) {
	c.pull()
	if !c.store.Contains(id) {
		c.log.Debug("reveal ignored", "id", id, "reason", "not found")
		return
	}
	changed := false
	for _, ancestor := range c.store.Ancestors(id) {
		if c.expansion.Expand(ancestor) {
			changed = true
		}
	}
	if changed {
		c.emit(ExpansionChanged)
	}
}

// Filter returns the rows for every node matching pred, collapsed or not,
// together with the ancestors needed to place them. Expansion state is
// left untouched.
func (c *Controller) Filter(pred Predicate) []VisibleNode {
	c.pull()
	if pred == nil {
		return c.VisibleNodes()
	}
	var walk func(nodes []model.TreeNode, depth int) []VisibleNode
	walk = func(nodes []model.TreeNode, depth int) []VisibleNode {
		var rows []VisibleNode
		for _, node := range nodes {
			below := walk(node.Children, depth+1)
			match := pred(NodeState{
				Node:     node,
				Depth:    depth,
				Expanded: c.expansion.IsExpanded(node.ID),
				Selected: c.selection.IsSelected(node.ID),
			})
			if match || len(below) > 0 {
				rows = append(rows, VisibleNode{Node: node, Depth: depth})
				rows = append(rows, below...)
			}
		}
		return rows
	}
	return walk(c.store.Roots(), 0)
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
