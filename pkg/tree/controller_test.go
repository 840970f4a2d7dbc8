package tree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/treekit/pkg/logging"
	"github.com/vanderheijden86/treekit/pkg/model"
)

// recorder collects every change event a controller emits.
type recorder struct {
	events []ChangeEvent
}

func (r *recorder) OnChange(e ChangeEvent) {
	r.events = append(r.events, e)
}

func (r *recorder) last() ChangeEvent {
	return r.events[len(r.events)-1]
}

func rows(nodes []VisibleNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = strings.Repeat(".", n.Depth) + n.Node.ID
	}
	return out
}

func TestVisibleNodesCollapsedByDefault(t *testing.T) {
	c := New([]model.TreeNode{{ID: "r", Children: []model.TreeNode{{ID: "c"}}}})

	got := c.VisibleNodes()
	require.Len(t, got, 1)
	assert.Equal(t, "r", got[0].Node.ID)
	assert.Equal(t, 0, got[0].Depth)
}

func TestVisibleNodesExpandOnDemand(t *testing.T) {
	c := New([]model.TreeNode{{ID: "r", Children: []model.TreeNode{{ID: "c"}}}})
	c.ToggleExpand("r")

	got := c.VisibleNodes()
	require.Len(t, got, 2)
	assert.Equal(t, VisibleNode{Node: model.TreeNode{ID: "c"}, Depth: 1}, got[1])
	assert.Equal(t, "r", got[0].Node.ID)
}

func TestVisibleNodesPreservesOrderAtEveryDepth(t *testing.T) {
	c := New(sampleForest(), WithInitialExpanded("r", "a"))
	assert.Equal(t, []string{"r", ".a", "..a1", "..a2", ".b", "s"}, rows(c.VisibleNodes()))
}

func TestVisibleNodesHidesDescendantsOfCollapsedAncestor(t *testing.T) {
	// a stays expanded but r is collapsed, so nothing below r shows.
	c := New(sampleForest(), WithInitialExpanded("a"))
	assert.Equal(t, []string{"r", "s"}, rows(c.VisibleNodes()))
	assert.True(t, c.IsExpanded("a"))
}

func TestVisibleNodesEmptyForest(t *testing.T) {
	c := New(nil)
	assert.Empty(t, c.VisibleNodes())
	c.ToggleExpand("x")
	c.ToggleSelect("x")
	assert.Empty(t, c.State().Expanded)
}

func TestToggleExpandNotifiesWithFullSet(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithListener(rec))

	c.ToggleExpand("r")
	c.ToggleExpand("a")
	require.Len(t, rec.events, 2)
	assert.Equal(t, ChangeEvent{Kind: ExpansionChanged, IDs: []string{"r", "a"}}, rec.last())

	c.ToggleExpand("r")
	assert.Equal(t, []string{"a"}, rec.last().IDs)
}

func TestToggleExpandDoubleIsIdempotent(t *testing.T) {
	c := New(sampleForest(), WithInitialExpanded("a"))
	before := c.ExpandedIDs()

	c.ToggleExpand("r")
	c.ToggleExpand("r")

	assert.ElementsMatch(t, before, c.ExpandedIDs())
}

func TestToggleExpandIgnoresLeavesAndUnknownIDs(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithListener(rec))

	c.ToggleExpand("nonexistent")
	c.ToggleExpand("a1")

	assert.Empty(t, c.ExpandedIDs())
	assert.Empty(t, rec.events, "no notification for ignored toggles")
}

func TestToggleSelectSingleExclusive(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithListener(rec))

	c.ToggleSelect("a1")
	c.ToggleSelect("b")

	assert.Equal(t, []string{"b"}, c.SelectedIDs())
	require.Len(t, rec.events, 2)
	assert.Equal(t, ChangeEvent{Kind: SelectionChanged, IDs: []string{"b"}}, rec.last())
}

func TestToggleSelectSingleReselectKeepsSelection(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithListener(rec))

	for i := 0; i < 5; i++ {
		c.ToggleSelect("b")
	}

	assert.Equal(t, []string{"b"}, c.SelectedIDs())
	require.Len(t, rec.events, 1, "re-selecting leaves the set unchanged")
	assert.Equal(t, ChangeEvent{Kind: SelectionChanged, IDs: []string{"b"}}, rec.last())
}

func TestToggleSelectMultiToggles(t *testing.T) {
	c := New(sampleForest(), WithMode(model.SelectMulti))

	c.ToggleSelect("a1")
	c.ToggleSelect("b")
	assert.Equal(t, []string{"a1", "b"}, c.SelectedIDs())

	c.ToggleSelect("a1")
	assert.Equal(t, []string{"b"}, c.SelectedIDs())
}

func TestToggleSelectIgnoresDisabledAndUnknown(t *testing.T) {
	for _, mode := range []model.SelectionMode{model.SelectSingle, model.SelectMulti} {
		t.Run(string(mode), func(t *testing.T) {
			rec := &recorder{}
			c := New(sampleForest(), WithMode(mode), WithListener(rec))
			c.ToggleSelect("b")
			rec.events = nil

			c.ToggleSelect("a2")
			c.ToggleSelect("ghost")

			assert.False(t, c.IsSelected("a2"))
			assert.Equal(t, []string{"b"}, c.SelectedIDs())
			assert.Empty(t, rec.events)
		})
	}
}

func TestInitialStateDropsInvalidIDs(t *testing.T) {
	c := New(sampleForest(),
		WithMode(model.SelectMulti),
		WithInitialExpanded("r", "a1", "ghost"),
		WithInitialSelected("a2", "b", "ghost", "s"),
	)
	assert.Equal(t, []string{"r"}, c.ExpandedIDs())
	assert.Equal(t, []string{"b", "s"}, c.SelectedIDs())
	assert.Equal(t, Uncontrolled, c.Ownership())
}

func TestControlledModeMirrorsCallerState(t *testing.T) {
	external := State{Expanded: []string{"r"}, Selected: []string{"s"}}
	var persisted []ChangeEvent

	c := New(sampleForest(),
		WithControlledState(func() State { return external }),
		WithListener(ListenerFunc(func(e ChangeEvent) { persisted = append(persisted, e) })),
	)
	assert.Equal(t, Controlled, c.Ownership())
	assert.Equal(t, "controlled", c.Ownership().String())
	assert.Equal(t, []string{"r", ".a", ".b", "s"}, rows(c.VisibleNodes()))

	// The caller changes its state out of band; the controller follows.
	external = State{Expanded: []string{"r", "a"}}
	assert.Equal(t, []string{"r", ".a", "..a1", "..a2", ".b", "s"}, rows(c.VisibleNodes()))
	assert.False(t, c.IsSelected("s"))

	// Operations start from the caller's value and hand the result back.
	c.ToggleExpand("a")
	require.Len(t, persisted, 1)
	assert.Equal(t, []string{"r"}, persisted[0].IDs)

	// Without persisting, the next call snaps back to the caller's value.
	assert.ElementsMatch(t, []string{"r", "a"}, c.ExpandedIDs())

	external.Expanded = persisted[0].IDs
	assert.Equal(t, []string{"r"}, c.ExpandedIDs())
}

func TestSyncOverwritesWithoutNotification(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithListener(rec))

	c.Sync(State{Expanded: []string{"a", "b"}, Selected: []string{"a1", "b"}})

	assert.Equal(t, []string{"a"}, c.ExpandedIDs(), "b is a leaf and cannot be expanded")
	assert.Equal(t, []string{"a1"}, c.SelectedIDs(), "single mode keeps only the first")
	assert.Empty(t, rec.events)
}

func TestReentrantListenerIsSerialized(t *testing.T) {
	var c *Controller
	calls := 0
	c = New(sampleForest(), WithListener(ListenerFunc(func(e ChangeEvent) {
		calls++
		if e.Kind == ExpansionChanged && len(e.IDs) == 1 && e.IDs[0] == "r" {
			c.ToggleExpand("a")
		}
	})))

	c.ToggleExpand("r")
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"r", "a"}, c.ExpandedIDs())
}

func TestSetNodesPrunesStaleIDs(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithMode(model.SelectMulti), WithInitialExpanded("r", "a"), WithInitialSelected("a1", "b"), WithListener(rec))

	// a loses its children, b disappears.
	c.SetNodes([]model.TreeNode{
		{ID: "r", Children: []model.TreeNode{{ID: "a"}, {ID: "a1"}}},
	})

	assert.Equal(t, []string{"r"}, c.ExpandedIDs())
	assert.Equal(t, []string{"a1"}, c.SelectedIDs())
	require.Len(t, rec.events, 2)
	assert.Equal(t, ExpansionChanged, rec.events[0].Kind)
	assert.Equal(t, SelectionChanged, rec.events[1].Kind)
}

func TestSetNodesWithoutPruningIsSilent(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithInitialExpanded("r"), WithListener(rec))
	c.SetNodes(sampleForest())
	assert.Empty(t, rec.events)
	assert.Equal(t, []string{"r"}, c.ExpandedIDs())
}

func TestSetNodesRejectsNewlyDisabledSelection(t *testing.T) {
	c := New(sampleForest(), WithInitialSelected("b"))
	forest := sampleForest()
	forest[0].Children[1].Disabled = true
	c.SetNodes(forest)
	assert.Empty(t, c.SelectedIDs())
}

func TestSetModeTruncatesSelection(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithMode(model.SelectMulti), WithInitialSelected("b", "s"), WithListener(rec))

	c.SetMode(model.SelectSingle)
	assert.Equal(t, model.SelectSingle, c.Mode())
	assert.Equal(t, []string{"b"}, c.SelectedIDs())
	require.Len(t, rec.events, 1)

	c.SetMode(model.SelectMulti)
	assert.Len(t, rec.events, 1)
}

func TestClearSelection(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithInitialSelected("b"), WithListener(rec))

	c.ClearSelection()
	c.ClearSelection()

	assert.Empty(t, c.SelectedIDs())
	assert.Len(t, rec.events, 1)
}

func TestExpandAllAndCollapseAll(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithListener(rec))

	c.ExpandAll()
	assert.ElementsMatch(t, []string{"r", "a"}, c.ExpandedIDs())
	assert.Len(t, c.VisibleNodes(), 6)

	c.ExpandAll()
	assert.Len(t, rec.events, 1, "expanding an already expanded tree is silent")

	c.CollapseAll()
	assert.Empty(t, c.ExpandedIDs())
	assert.Equal(t, []string{"r", "s"}, rows(c.VisibleNodes()))
	assert.Len(t, rec.events, 2)
}

func TestToggleExpandCollapseAll(t *testing.T) {
	c := New(sampleForest(), WithInitialExpanded("r"))

	c.ToggleExpandCollapseAll()
	assert.ElementsMatch(t, []string{"r", "a"}, c.ExpandedIDs())

	c.ToggleExpandCollapseAll()
	assert.Empty(t, c.ExpandedIDs())
}

func TestExpandToLevel(t *testing.T) {
	c := New(sampleForest())

	c.ExpandToLevel(1)
	assert.Equal(t, []string{"r", "s"}, rows(c.VisibleNodes()))

	c.ExpandToLevel(2)
	assert.Equal(t, []string{"r", ".a", ".b", "s"}, rows(c.VisibleNodes()))

	c.ExpandToLevel(3)
	assert.Len(t, c.VisibleNodes(), 6)

	c.ExpandToLevel(0)
	assert.Empty(t, c.ExpandedIDs())
}

func TestReveal(t *testing.T) {
	rec := &recorder{}
	c := New(sampleForest(), WithListener(rec))

	c.Reveal("a2")
	assert.Equal(t, []string{"r", "a"}, c.ExpandedIDs())
	assert.Contains(t, rows(c.VisibleNodes()), "..a2")

	c.Reveal("a1")
	c.Reveal("r")
	c.Reveal("ghost")
	assert.Len(t, rec.events, 1)
}

func TestFilterIncludesAncestorsOfCollapsedMatches(t *testing.T) {
	c := New(sampleForest())

	got := c.Filter(LabelContains("two"))
	assert.Equal(t, []string{"r", ".a", "..a2"}, rows(got))
	assert.Empty(t, c.ExpandedIDs(), "filter does not touch expansion")

	assert.Empty(t, c.Filter(LabelContains("zzz")))
	assert.Equal(t, rows(c.VisibleNodes()), rows(c.Filter(nil)))
}

func TestFilterSeesNodeState(t *testing.T) {
	c := New(sampleForest(), WithInitialSelected("s"))
	got := c.Filter(func(s NodeState) bool { return s.Selected })
	assert.Equal(t, []string{"s"}, rows(got))
}

func TestControllerLogsIgnoredOperations(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := logging.New(logging.Options{Level: "debug", Writer: buf})
	require.NoError(t, err)

	c := New(sampleForest(), WithLogger(log))
	c.ToggleExpand("a1")
	c.ToggleSelect("a2")

	out := buf.String()
	assert.Contains(t, out, "toggle expand ignored")
	assert.Contains(t, out, `"reason":"leaf"`)
	assert.Contains(t, out, `"reason":"disabled"`)
	assert.Contains(t, out, `"component":"tree"`)
}

func TestControllerWarnsOnDuplicateIDs(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := logging.New(logging.Options{Level: "warn", Writer: buf})
	require.NoError(t, err)

	New([]model.TreeNode{{ID: "x"}, {ID: "x"}}, WithLogger(log))
	assert.Contains(t, buf.String(), "duplicate node id")
}

func TestAddListener(t *testing.T) {
	c := New(sampleForest())
	var got []string
	c.AddListener(OnExpandedChange(func(ids []string) { got = ids }))
	c.AddListener(nil)
	c.ToggleExpand("r")
	assert.Equal(t, []string{"r"}, got)
}
