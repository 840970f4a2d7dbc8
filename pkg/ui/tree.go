package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/treekit/pkg/model"
	"github.com/vanderheijden86/treekit/pkg/tree"
)

// TreeModel renders a tree.Controller as a scrollable list of rows and
// maps cursor movement onto controller operations.
type TreeModel struct {
	ctrl     *tree.Controller
	flatList []tree.VisibleNode // rows currently on screen, in order
	prefixes []string           // branch drawing per row
	matches  map[int]bool       // rows matching the active filter

	cursor         int
	viewportOffset int // index of the first rendered row
	width          int
	height         int
	theme          Theme

	filter      tree.Predicate
	filterQuery string
}

// NewTreeModel wraps ctrl.
func NewTreeModel(ctrl *tree.Controller, theme Theme) TreeModel {
	t := TreeModel{ctrl: ctrl, theme: theme}
	t.Refresh()
	return t
}

// Controller returns the wrapped controller.
func (t *TreeModel) Controller() *tree.Controller {
	return t.ctrl
}

// SetSize updates the available dimensions for the tree view
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Refresh rebuilds the row list from the controller, keeping the cursor on
// the same node when it is still shown.
func (t *TreeModel) Refresh() {
	current := t.CursorID()

	if t.filter != nil {
		t.flatList = t.ctrl.Filter(t.filter)
	} else {
		t.flatList = t.ctrl.VisibleNodes()
	}
	t.prefixes = buildPrefixes(t.flatList)
	t.matches = nil
	if t.filter != nil {
		t.matches = make(map[int]bool)
		for i, row := range t.flatList {
			if t.filter(t.nodeState(row)) {
				t.matches[i] = true
			}
		}
	}

	if current == "" || !t.SelectByID(current) {
		t.clampCursor()
	}
	t.ensureCursorVisible()
}

func (t *TreeModel) nodeState(row tree.VisibleNode) tree.NodeState {
	return tree.NodeState{
		Node:     row.Node,
		Depth:    row.Depth,
		Expanded: t.ctrl.IsExpanded(row.Node.ID),
		Selected: t.ctrl.IsSelected(row.Node.ID),
	}
}

// buildPrefixes draws the branch characters for each row. A row is the
// last child when no later row at its depth appears before a shallower one.
func buildPrefixes(rows []tree.VisibleNode) []string {
	isLast := make([]bool, len(rows))
	var open []bool
	for i := len(rows) - 1; i >= 0; i-- {
		d := rows[i].Depth
		isLast[i] = !(d < len(open) && open[d])
		if len(open) > d+1 {
			open = open[:d+1]
		}
		for len(open) <= d {
			open = append(open, false)
		}
		open[d] = true
	}

	prefixes := make([]string, len(rows))
	var cont []bool // cont[k]: the ancestor at depth k has later siblings
	for i, row := range rows {
		d := row.Depth
		if len(cont) > d {
			cont = cont[:d]
		}
		if d > 0 {
			var sb strings.Builder
			for k := 1; k < d && k < len(cont); k++ {
				if cont[k] {
					sb.WriteString("│   ")
				} else {
					sb.WriteString("    ")
				}
			}
			if isLast[i] {
				sb.WriteString("└── ")
			} else {
				sb.WriteString("├── ")
			}
			prefixes[i] = sb.String()
		}
		for len(cont) < d {
			cont = append(cont, false)
		}
		cont = append(cont, !isLast[i])
	}
	return prefixes
}

// View renders the rows inside the viewport window.
func (t *TreeModel) View() string {
	if len(t.flatList) == 0 {
		return t.renderEmptyState()
	}

	start, end := t.visibleRange()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := t.renderNode(i)
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (t *TreeModel) renderEmptyState() string {
	r := t.theme.Renderer
	titleStyle := r.NewStyle().Foreground(t.theme.Primary).Bold(true)
	mutedStyle := r.NewStyle().Foreground(t.theme.Muted)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Tree View"))
	sb.WriteString("\n\n")
	if t.filter != nil {
		sb.WriteString(mutedStyle.Render("No nodes match " + quote(t.filterQuery) + "."))
		sb.WriteString("\n\n")
		sb.WriteString(mutedStyle.Render("Press esc to clear the search."))
	} else {
		sb.WriteString(mutedStyle.Render("No nodes to display."))
	}
	return sb.String()
}

func quote(s string) string {
	return "\"" + s + "\""
}

// renderNode renders one row: branch prefix, expand indicator, selection
// mark and label.
func (t *TreeModel) renderNode(i int) string {
	row := t.flatList[i]
	node := row.Node
	r := t.theme.Renderer

	var sb strings.Builder
	prefix := r.NewStyle().Foreground(t.theme.Muted).Render(t.prefixes[i])
	sb.WriteString(prefix)

	indicator := t.getExpandIndicator(node)
	indicatorColor := t.theme.Secondary
	if node.IsLeaf() {
		indicatorColor = t.theme.Leaf
	}
	sb.WriteString(r.NewStyle().Foreground(indicatorColor).Render(indicator))
	sb.WriteString(" ")

	selected := t.ctrl.IsSelected(node.ID)
	sb.WriteString(t.selectionMark(selected))

	label := node.DisplayLabel()
	maxLen := t.width - lipgloss.Width(prefix) - 6
	if t.width <= 0 || maxLen < 10 {
		maxLen = 60
	}
	label = truncateTitle(label, maxLen)

	switch {
	case node.Disabled:
		sb.WriteString(t.theme.Disabled.Render(label))
	case selected:
		sb.WriteString(t.theme.Marked.Render(label))
	case t.matches[i]:
		sb.WriteString(r.NewStyle().Foreground(t.theme.Highlight).Underline(true).Render(label))
	default:
		sb.WriteString(t.theme.Base.Render(label))
	}

	if node.Label != "" && node.Label != node.ID {
		remaining := maxLen - runewidth.StringWidth(label)
		if remaining > runewidth.StringWidth(node.ID)+1 {
			sb.WriteString(r.NewStyle().Foreground(t.theme.Muted).Render(" " + node.ID))
		}
	}
	return sb.String()
}

// selectionMark is a checkbox in multi mode and a dot in single mode.
func (t *TreeModel) selectionMark(selected bool) string {
	style := t.theme.Renderer.NewStyle().Foreground(t.theme.Highlight)
	if t.ctrl.Mode() == model.SelectMulti {
		if selected {
			return style.Render("[x]") + " "
		}
		return "[ ] "
	}
	if selected {
		return style.Render("●") + " "
	}
	return ""
}

// getExpandIndicator returns the expand/collapse indicator for a node.
func (t *TreeModel) getExpandIndicator(node model.TreeNode) string {
	if node.IsLeaf() {
		return "•"
	}
	if t.ctrl.IsExpanded(node.ID) {
		return "▾"
	}
	return "▸"
}

// truncateTitle shortens s to maxLen display cells with an ellipsis.
func truncateTitle(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	return runewidth.Truncate(s, maxLen, "…")
}

// CursorNode returns the row under the cursor.
func (t *TreeModel) CursorNode() (tree.VisibleNode, bool) {
	if t.cursor >= 0 && t.cursor < len(t.flatList) {
		return t.flatList[t.cursor], true
	}
	return tree.VisibleNode{}, false
}

// CursorID returns the id under the cursor, or "".
func (t *TreeModel) CursorID() string {
	if row, ok := t.CursorNode(); ok {
		return row.Node.ID
	}
	return ""
}

// Cursor returns the cursor row index.
func (t *TreeModel) Cursor() int {
	return t.cursor
}

// MoveDown moves the cursor down in the flat list.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.flatList)-1 {
		t.cursor++
	}
	t.ensureCursorVisible()
}

// MoveUp moves the cursor up in the flat list.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
	t.ensureCursorVisible()
}

// ToggleExpand expands or collapses the node under the cursor.
func (t *TreeModel) ToggleExpand() {
	if id := t.CursorID(); id != "" {
		t.ctrl.ToggleExpand(id)
		t.Refresh()
	}
}

// ToggleSelect selects or deselects the node under the cursor.
func (t *TreeModel) ToggleSelect() {
	if id := t.CursorID(); id != "" {
		t.ctrl.ToggleSelect(id)
	}
}

// ClearSelection empties the selection set.
func (t *TreeModel) ClearSelection() {
	t.ctrl.ClearSelection()
}

// ExpandAll expands every node that has children.
func (t *TreeModel) ExpandAll() {
	t.ctrl.ExpandAll()
	t.Refresh()
}

// CollapseAll collapses every node.
func (t *TreeModel) CollapseAll() {
	t.ctrl.CollapseAll()
	t.Refresh()
}

// ToggleExpandCollapseAll flips between fully expanded and fully collapsed.
func (t *TreeModel) ToggleExpandCollapseAll() {
	t.ctrl.ToggleExpandCollapseAll()
	t.Refresh()
}

// ExpandToLevel shows nodes down to the given level (1 = roots only).
func (t *TreeModel) ExpandToLevel(level int) {
	t.ctrl.ExpandToLevel(level)
	t.Refresh()
}

// JumpToTop moves cursor to the first node.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves cursor to the last node.
func (t *TreeModel) JumpToBottom() {
	if len(t.flatList) > 0 {
		t.cursor = len(t.flatList) - 1
	}
	t.ensureCursorVisible()
}

// JumpToParent moves the cursor to the parent of the current node.
// On a root it does nothing.
func (t *TreeModel) JumpToParent() {
	id := t.CursorID()
	if id == "" {
		return
	}
	if parent, ok := t.ctrl.Store().ParentOf(id); ok {
		t.SelectByID(parent)
	}
}

// ExpandOrMoveToChild handles the → / l key:
//   - collapsed parent: expand it
//   - expanded parent: move to its first child
//   - leaf: nothing
func (t *TreeModel) ExpandOrMoveToChild() {
	row, ok := t.CursorNode()
	if !ok || row.Node.IsLeaf() {
		return
	}
	if !t.ctrl.IsExpanded(row.Node.ID) {
		t.ctrl.ToggleExpand(row.Node.ID)
		t.Refresh()
		return
	}
	if next := t.cursor + 1; next < len(t.flatList) && t.flatList[next].Depth == row.Depth+1 {
		t.cursor = next
		t.ensureCursorVisible()
	}
}

// CollapseOrJumpToParent handles the ← / h key:
//   - expanded parent: collapse it
//   - anything else: jump to the parent
func (t *TreeModel) CollapseOrJumpToParent() {
	row, ok := t.CursorNode()
	if !ok {
		return
	}
	if !row.Node.IsLeaf() && t.ctrl.IsExpanded(row.Node.ID) {
		t.ctrl.ToggleExpand(row.Node.ID)
		t.Refresh()
		return
	}
	t.JumpToParent()
}

func (t *TreeModel) pageSize() int {
	if size := t.height / 2; size >= 1 {
		return size
	}
	return 5
}

// PageDown moves cursor down by half a viewport.
func (t *TreeModel) PageDown() {
	t.cursor += t.pageSize()
	t.clampCursor()
	t.ensureCursorVisible()
}

// PageUp moves cursor up by half a viewport.
func (t *TreeModel) PageUp() {
	t.cursor -= t.pageSize()
	t.clampCursor()
	t.ensureCursorVisible()
}

func (t *TreeModel) clampCursor() {
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func (t *TreeModel) rowsPerPage() int {
	if t.height > 0 {
		return t.height
	}
	return 20
}

// ensureCursorVisible scrolls the window so the cursor row is rendered.
func (t *TreeModel) ensureCursorVisible() {
	page := t.rowsPerPage()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+page {
		t.viewportOffset = t.cursor - page + 1
	}
	if maxOffset := len(t.flatList) - page; t.viewportOffset > maxOffset {
		t.viewportOffset = maxOffset
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// visibleRange returns the [start, end) row indices inside the viewport.
func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.flatList) == 0 {
		return 0, 0
	}
	start = t.viewportOffset
	end = min(start+t.rowsPerPage(), len(t.flatList))
	return start, end
}

// SelectByID moves the cursor to the row showing id.
func (t *TreeModel) SelectByID(id string) bool {
	for i, row := range t.flatList {
		if row.Node.ID == id {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// Reveal expands the ancestors of id and moves the cursor onto it.
func (t *TreeModel) Reveal(id string) bool {
	t.ctrl.Reveal(id)
	t.Refresh()
	return t.SelectByID(id)
}

// Search narrows the rows to nodes matching query plus their ancestors.
// A query starting with "=" is a filter expression; anything else is a
// case-insensitive label match.
func (t *TreeModel) Search(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		t.ClearSearch()
		return nil
	}
	var pred tree.Predicate
	if expr, ok := strings.CutPrefix(query, "="); ok {
		compiled, err := tree.CompileFilter(expr)
		if err != nil {
			return err
		}
		pred = compiled
	} else {
		pred = tree.LabelContains(query)
	}
	t.filter = pred
	t.filterQuery = query
	t.Refresh()

	// Land on the first match rather than its ancestors
	for i := range t.flatList {
		if t.matches[i] {
			t.cursor = i
			t.ensureCursorVisible()
			break
		}
	}
	return nil
}

// ClearSearch restores the normal projection.
func (t *TreeModel) ClearSearch() {
	t.filter = nil
	t.filterQuery = ""
	t.Refresh()
}

// SearchQuery returns the active search, or "".
func (t *TreeModel) SearchQuery() string {
	return t.filterQuery
}

// MatchCount returns how many shown rows match the active search.
func (t *TreeModel) MatchCount() int {
	return len(t.matches)
}

// NodeCount returns the number of rows currently shown.
func (t *TreeModel) NodeCount() int {
	return len(t.flatList)
}

// RootCount returns the number of root nodes in the forest.
func (t *TreeModel) RootCount() int {
	return len(t.ctrl.Store().Roots())
}
