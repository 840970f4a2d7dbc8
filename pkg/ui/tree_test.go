package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treekit/pkg/model"
	"github.com/vanderheijden86/treekit/pkg/tree"
)

func newTreeTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

// sampleForest:
//
//	r Root
//	├── a Alpha
//	│   ├── a1
//	│   └── a2 (disabled)
//	└── b Beta
//	s Second
func sampleForest() []model.TreeNode {
	return []model.TreeNode{
		{ID: "r", Label: "Root", Children: []model.TreeNode{
			{ID: "a", Label: "Alpha", Children: []model.TreeNode{
				{ID: "a1"},
				{ID: "a2", Disabled: true},
			}},
			{ID: "b", Label: "Beta"},
		}},
		{ID: "s", Label: "Second"},
	}
}

func newSampleTree(opts ...tree.Option) TreeModel {
	ctrl := tree.New(sampleForest(), opts...)
	tm := NewTreeModel(ctrl, newTreeTestTheme())
	tm.SetSize(80, 20)
	return tm
}

func rowIDs(tm *TreeModel) []string {
	ids := make([]string, len(tm.flatList))
	for i, row := range tm.flatList {
		ids[i] = row.Node.ID
	}
	return ids
}

func TestTreeEmpty(t *testing.T) {
	tm := NewTreeModel(tree.New(nil), newTreeTestTheme())
	tm.SetSize(80, 20)

	if tm.RootCount() != 0 {
		t.Errorf("expected 0 roots, got %d", tm.RootCount())
	}
	if tm.NodeCount() != 0 {
		t.Errorf("expected 0 nodes, got %d", tm.NodeCount())
	}
	if id := tm.CursorID(); id != "" {
		t.Errorf("expected empty cursor id, got %q", id)
	}
	if view := tm.View(); !strings.Contains(view, "No nodes to display") {
		t.Errorf("expected empty state message, got:\n%s", view)
	}

	// Movement on an empty tree is a no-op
	tm.MoveDown()
	tm.MoveUp()
	tm.PageDown()
	tm.JumpToBottom()
	tm.ToggleExpand()
	tm.ToggleSelect()
	if tm.Cursor() != 0 {
		t.Errorf("expected cursor 0, got %d", tm.Cursor())
	}
}

func TestTreeCollapsedByDefault(t *testing.T) {
	tm := newSampleTree()

	if tm.RootCount() != 2 {
		t.Errorf("expected 2 roots, got %d", tm.RootCount())
	}
	if got := rowIDs(&tm); fmt.Sprint(got) != "[r s]" {
		t.Errorf("expected [r s], got %v", got)
	}
}

func TestTreeInitialExpanded(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r", "a"))

	want := "[r a a1 a2 b s]"
	if got := rowIDs(&tm); fmt.Sprint(got) != want {
		t.Errorf("expected %s, got %v", want, got)
	}
}

func TestTreeNavigation(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r"))

	if id := tm.CursorID(); id != "r" {
		t.Errorf("expected initial cursor r, got %s", id)
	}
	tm.MoveDown()
	if id := tm.CursorID(); id != "a" {
		t.Errorf("expected a after MoveDown, got %s", id)
	}
	tm.MoveDown()
	tm.MoveDown()
	if id := tm.CursorID(); id != "s" {
		t.Errorf("expected s after 3x MoveDown, got %s", id)
	}
	tm.MoveDown()
	if id := tm.CursorID(); id != "s" {
		t.Errorf("expected cursor to stay on last row, got %s", id)
	}
	tm.MoveUp()
	if id := tm.CursorID(); id != "b" {
		t.Errorf("expected b after MoveUp, got %s", id)
	}
	tm.JumpToTop()
	if id := tm.CursorID(); id != "r" {
		t.Errorf("expected r after JumpToTop, got %s", id)
	}
	tm.MoveUp()
	if tm.Cursor() != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", tm.Cursor())
	}
	tm.JumpToBottom()
	if id := tm.CursorID(); id != "s" {
		t.Errorf("expected s after JumpToBottom, got %s", id)
	}
}

func TestTreeExpandCollapse(t *testing.T) {
	tm := newSampleTree()

	tm.ToggleExpand() // cursor on r
	if tm.NodeCount() != 4 {
		t.Errorf("expected 4 rows after expanding r, got %d", tm.NodeCount())
	}
	if !tm.Controller().IsExpanded("r") {
		t.Error("expected r to be expanded")
	}

	tm.ToggleExpand()
	if tm.NodeCount() != 2 {
		t.Errorf("expected 2 rows after collapsing r, got %d", tm.NodeCount())
	}

	tm.ExpandAll()
	if tm.NodeCount() != 6 {
		t.Errorf("expected 6 rows after ExpandAll, got %d", tm.NodeCount())
	}

	tm.CollapseAll()
	if tm.NodeCount() != 2 {
		t.Errorf("expected 2 rows after CollapseAll, got %d", tm.NodeCount())
	}

	tm.ToggleExpandCollapseAll()
	if tm.NodeCount() != 6 {
		t.Errorf("expected 6 rows after toggling all open, got %d", tm.NodeCount())
	}
	tm.ToggleExpandCollapseAll()
	if tm.NodeCount() != 2 {
		t.Errorf("expected 2 rows after toggling all closed, got %d", tm.NodeCount())
	}
}

func TestTreeToggleExpandOnLeafIsNoop(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r"))
	tm.SelectByID("b")

	var events int
	tm.Controller().AddListener(tree.ListenerFunc(func(tree.ChangeEvent) { events++ }))
	tm.ToggleExpand()

	if events != 0 {
		t.Errorf("expected no notification for a leaf, got %d", events)
	}
	if tm.NodeCount() != 4 {
		t.Errorf("expected 4 rows, got %d", tm.NodeCount())
	}
}

func TestTreeExpandToLevel(t *testing.T) {
	tm := newSampleTree()

	tm.ExpandToLevel(2)
	if got := rowIDs(&tm); fmt.Sprint(got) != "[r a b s]" {
		t.Errorf("level 2: got %v", got)
	}
	tm.ExpandToLevel(3)
	if tm.NodeCount() != 6 {
		t.Errorf("level 3: expected 6 rows, got %d", tm.NodeCount())
	}
	tm.ExpandToLevel(1)
	if tm.NodeCount() != 2 {
		t.Errorf("level 1: expected 2 rows, got %d", tm.NodeCount())
	}
}

func TestTreeCursorFollowsNodeOnRefresh(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r"))
	tm.SelectByID("s")

	tm.Controller().ToggleExpand("a")
	tm.Refresh()

	if id := tm.CursorID(); id != "s" {
		t.Errorf("expected cursor to stay on s, got %s", id)
	}
	if tm.Cursor() != 5 {
		t.Errorf("expected s at row 5, got %d", tm.Cursor())
	}
}

func TestTreeCursorClampedWhenRowDisappears(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r", "a"))
	tm.SelectByID("a2")

	tm.Controller().CollapseAll()
	tm.Refresh()

	if tm.Cursor() >= tm.NodeCount() {
		t.Errorf("cursor %d out of range for %d rows", tm.Cursor(), tm.NodeCount())
	}
}

func TestTreeSelectSingle(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r"))

	tm.SelectByID("a")
	tm.ToggleSelect()
	tm.SelectByID("b")
	tm.ToggleSelect()

	if got := tm.Controller().SelectedIDs(); fmt.Sprint(got) != "[b]" {
		t.Errorf("single mode: expected [b], got %v", got)
	}

	tm.ToggleSelect()
	if got := tm.Controller().SelectedIDs(); fmt.Sprint(got) != "[b]" {
		t.Errorf("re-selecting in single mode should keep [b], got %v", got)
	}

	tm.ClearSelection()
	if got := tm.Controller().SelectedIDs(); len(got) != 0 {
		t.Errorf("expected empty selection, got %v", got)
	}
}

func TestTreeSelectMulti(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r"), tree.WithMode(model.SelectMulti))

	tm.SelectByID("a")
	tm.ToggleSelect()
	tm.SelectByID("b")
	tm.ToggleSelect()
	if got := tm.Controller().SelectedIDs(); fmt.Sprint(got) != "[a b]" {
		t.Errorf("multi mode: expected [a b], got %v", got)
	}

	tm.ToggleSelect()
	if got := tm.Controller().SelectedIDs(); fmt.Sprint(got) != "[a]" {
		t.Errorf("multi mode toggle off: expected [a], got %v", got)
	}
}

func TestTreeSelectDisabledIgnored(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r", "a"))
	tm.SelectByID("a2")
	tm.ToggleSelect()

	if tm.Controller().IsSelected("a2") {
		t.Error("disabled node should not be selectable")
	}
}

func TestTreePrefixes(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r", "a"))

	want := []string{"", "├── ", "│   ├── ", "│   └── ", "└── ", ""}
	if len(tm.prefixes) != len(want) {
		t.Fatalf("expected %d prefixes, got %d", len(want), len(tm.prefixes))
	}
	for i, w := range want {
		if tm.prefixes[i] != w {
			t.Errorf("row %d (%s): expected prefix %q, got %q", i, tm.flatList[i].Node.ID, w, tm.prefixes[i])
		}
	}
}

func TestBuildPrefixesLastChildGap(t *testing.T) {
	rows := []tree.VisibleNode{
		{Node: model.TreeNode{ID: "r"}, Depth: 0},
		{Node: model.TreeNode{ID: "x"}, Depth: 1},
		{Node: model.TreeNode{ID: "y"}, Depth: 2},
	}
	got := buildPrefixes(rows)
	want := []string{"", "└── ", "    └── "}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTreeViewRendering(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r", "a"))

	view := tm.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), view)
	}

	checks := []struct {
		line int
		want string
	}{
		{0, "▾ Root"},
		{1, "├── ▾ Alpha"},
		{2, "│   ├── • a1"},
		{3, "│   └── • a2"},
		{4, "└── • Beta"},
		{5, "• Second"},
	}
	for _, c := range checks {
		if !strings.Contains(lines[c.line], c.want) {
			t.Errorf("line %d: expected %q in %q", c.line, c.want, lines[c.line])
		}
	}

	// Labelled nodes show their id after the label
	if !strings.Contains(lines[1], "Alpha a") {
		t.Errorf("expected id suffix on labelled row, got %q", lines[1])
	}
}

func TestTreeViewIndicators(t *testing.T) {
	tm := newSampleTree()
	collapsed := tm.getExpandIndicator(tm.flatList[0].Node)
	if collapsed != "▸" {
		t.Errorf("expected ▸ for collapsed parent, got %s", collapsed)
	}

	tm.ToggleExpand()
	if got := tm.getExpandIndicator(tm.flatList[0].Node); got != "▾" {
		t.Errorf("expected ▾ for expanded parent, got %s", got)
	}
	if got := tm.getExpandIndicator(model.TreeNode{ID: "leaf"}); got != "•" {
		t.Errorf("expected • for leaf, got %s", got)
	}
}

func TestTreeViewSelectionMarks(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r"), tree.WithMode(model.SelectMulti))
	tm.SelectByID("b")
	tm.ToggleSelect()

	lines := strings.Split(tm.View(), "\n")
	if !strings.Contains(lines[2], "[x] Beta") {
		t.Errorf("expected checked box on b, got %q", lines[2])
	}
	if !strings.Contains(lines[1], "[ ] Alpha") {
		t.Errorf("expected empty box on a, got %q", lines[1])
	}

	tm.Controller().SetMode(model.SelectSingle)
	lines = strings.Split(tm.View(), "\n")
	if !strings.Contains(lines[2], "● Beta") {
		t.Errorf("expected dot on selected row in single mode, got %q", lines[2])
	}
	if strings.Contains(lines[1], "[ ]") {
		t.Errorf("single mode should not draw checkboxes, got %q", lines[1])
	}
}

func TestTreeTruncateTitle(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long title", 10, "this is a…"},
		{"abc", 2, "..."},
		{"日本語のタイトル", 7, "日本語…"},
	}
	for _, tt := range tests {
		if got := truncateTitle(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateTitle(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestTreeJumpToParent(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r", "a"))

	tm.SelectByID("a2")
	tm.JumpToParent()
	if id := tm.CursorID(); id != "a" {
		t.Errorf("expected a, got %s", id)
	}
	tm.JumpToParent()
	if id := tm.CursorID(); id != "r" {
		t.Errorf("expected r, got %s", id)
	}
	tm.JumpToParent()
	if id := tm.CursorID(); id != "r" {
		t.Errorf("expected to stay on root r, got %s", id)
	}
}

func TestTreeExpandOrMoveToChild(t *testing.T) {
	tm := newSampleTree()

	tm.ExpandOrMoveToChild() // r collapsed: expand
	if !tm.Controller().IsExpanded("r") {
		t.Fatal("expected r to expand")
	}
	if id := tm.CursorID(); id != "r" {
		t.Errorf("expected cursor to stay on r, got %s", id)
	}

	tm.ExpandOrMoveToChild() // r expanded: move to first child
	if id := tm.CursorID(); id != "a" {
		t.Errorf("expected a, got %s", id)
	}

	tm.SelectByID("b")
	tm.ExpandOrMoveToChild() // leaf: nothing
	if id := tm.CursorID(); id != "b" {
		t.Errorf("expected to stay on leaf b, got %s", id)
	}
}

func TestTreeCollapseOrJumpToParent(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r", "a"))

	tm.SelectByID("a")
	tm.CollapseOrJumpToParent() // expanded: collapse
	if tm.Controller().IsExpanded("a") {
		t.Error("expected a to collapse")
	}
	if id := tm.CursorID(); id != "a" {
		t.Errorf("expected to stay on a, got %s", id)
	}

	tm.CollapseOrJumpToParent() // collapsed: jump to parent
	if id := tm.CursorID(); id != "r" {
		t.Errorf("expected r, got %s", id)
	}
}

func TestTreePageNavigation(t *testing.T) {
	roots := make([]model.TreeNode, 50)
	for i := range roots {
		roots[i] = model.TreeNode{ID: fmt.Sprintf("n-%02d", i)}
	}
	tm := NewTreeModel(tree.New(roots), newTreeTestTheme())
	tm.SetSize(80, 10)

	tm.PageDown()
	if tm.Cursor() != 5 {
		t.Errorf("expected cursor 5 after PageDown, got %d", tm.Cursor())
	}
	tm.PageUp()
	if tm.Cursor() != 0 {
		t.Errorf("expected cursor 0 after PageUp, got %d", tm.Cursor())
	}
	tm.PageUp()
	if tm.Cursor() != 0 {
		t.Errorf("expected cursor clamped at 0, got %d", tm.Cursor())
	}

	for range 20 {
		tm.PageDown()
	}
	if tm.Cursor() != 49 {
		t.Errorf("expected cursor clamped at 49, got %d", tm.Cursor())
	}
}

func TestVisibleRange(t *testing.T) {
	roots := make([]model.TreeNode, 100)
	for i := range roots {
		roots[i] = model.TreeNode{ID: fmt.Sprintf("n-%03d", i)}
	}
	tm := NewTreeModel(tree.New(roots), newTreeTestTheme())
	tm.SetSize(80, 10)

	start, end := tm.visibleRange()
	if start != 0 || end != 10 {
		t.Errorf("expected [0,10), got [%d,%d)", start, end)
	}

	tm.JumpToBottom()
	start, end = tm.visibleRange()
	if start != 90 || end != 100 {
		t.Errorf("expected [90,100) at bottom, got [%d,%d)", start, end)
	}
	if lines := strings.Split(tm.View(), "\n"); len(lines) != 10 {
		t.Errorf("expected 10 rendered lines, got %d", len(lines))
	}

	tm.JumpToTop()
	start, _ = tm.visibleRange()
	if start != 0 {
		t.Errorf("expected window to scroll back to 0, got %d", start)
	}
}

func TestTreeSelectByID(t *testing.T) {
	tm := newSampleTree(tree.WithInitialExpanded("r"))

	if !tm.SelectByID("b") {
		t.Error("expected SelectByID(b) to succeed")
	}
	if id := tm.CursorID(); id != "b" {
		t.Errorf("expected b, got %s", id)
	}
	if tm.SelectByID("a1") {
		t.Error("hidden node should not be selectable by id")
	}
	if tm.SelectByID("missing") {
		t.Error("unknown id should not be selectable")
	}
}

func TestTreeReveal(t *testing.T) {
	tm := newSampleTree()

	if !tm.Reveal("a2") {
		t.Fatal("expected Reveal(a2) to succeed")
	}
	if id := tm.CursorID(); id != "a2" {
		t.Errorf("expected cursor on a2, got %s", id)
	}
	if got := tm.Controller().ExpandedIDs(); fmt.Sprint(got) != "[r a]" {
		t.Errorf("expected ancestors [r a] expanded, got %v", got)
	}
	if tm.Reveal("missing") {
		t.Error("Reveal of unknown id should fail")
	}
}

func TestTreeSearchLabel(t *testing.T) {
	tm := newSampleTree()

	if err := tm.Search("a1"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := rowIDs(&tm); fmt.Sprint(got) != "[r a a1]" {
		t.Errorf("expected [r a a1], got %v", got)
	}
	if tm.MatchCount() != 1 {
		t.Errorf("expected 1 match, got %d", tm.MatchCount())
	}
	if id := tm.CursorID(); id != "a1" {
		t.Errorf("expected cursor on first match a1, got %s", id)
	}
	if tm.Controller().IsExpanded("r") {
		t.Error("search must not change expansion state")
	}

	tm.ClearSearch()
	if tm.SearchQuery() != "" {
		t.Errorf("expected empty query, got %q", tm.SearchQuery())
	}
	if got := rowIDs(&tm); fmt.Sprint(got) != "[r s]" {
		t.Errorf("expected [r s] after clearing, got %v", got)
	}
}

func TestTreeSearchExpression(t *testing.T) {
	tm := newSampleTree()

	if err := tm.Search("=disabled"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := rowIDs(&tm); fmt.Sprint(got) != "[r a a2]" {
		t.Errorf("expected [r a a2], got %v", got)
	}

	if err := tm.Search("=depth >"); err == nil {
		t.Error("expected compile error for malformed expression")
	}
}

func TestTreeSearchNoMatches(t *testing.T) {
	tm := newSampleTree()

	if err := tm.Search("zzz"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if tm.NodeCount() != 0 {
		t.Errorf("expected no rows, got %d", tm.NodeCount())
	}
	view := tm.View()
	if !strings.Contains(view, `No nodes match "zzz"`) {
		t.Errorf("expected no-match message, got:\n%s", view)
	}

	if err := tm.Search("   "); err != nil {
		t.Fatalf("blank search: %v", err)
	}
	if tm.SearchQuery() != "" {
		t.Error("blank search should clear the filter")
	}
}
