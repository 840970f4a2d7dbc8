package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vanderheijden86/treekit/pkg/model"
)

func TestExpansionTrackerToggle(t *testing.T) {
	tr := NewExpansionTracker()
	assert.False(t, tr.IsExpanded("a"))

	tr.Toggle("a")
	assert.True(t, tr.IsExpanded("a"))

	tr.Toggle("a")
	assert.False(t, tr.IsExpanded("a"))
	assert.Equal(t, 0, tr.Len())
}

func TestExpansionTrackerTogglesLeavesToo(t *testing.T) {
	// The tracker does not know the tree; guarding leaves is the controller's job.
	tr := NewExpansionTracker()
	tr.Toggle("leaf")
	assert.True(t, tr.IsExpanded("leaf"))
}

func TestExpansionTrackerKeepsInsertionOrder(t *testing.T) {
	tr := NewExpansionTracker("c", "a")
	tr.Toggle("b")
	tr.Toggle("c")
	tr.Toggle("c")
	assert.Equal(t, []string{"a", "b", "c"}, tr.IDs())
}

func TestExpansionTrackerSetExpanded(t *testing.T) {
	tr := NewExpansionTracker("x")
	tr.SetExpanded([]string{"a", "b", "a"})
	assert.Equal(t, []string{"a", "b"}, tr.IDs())
	assert.False(t, tr.IsExpanded("x"))

	assert.False(t, tr.Expand("a"))
	assert.True(t, tr.Collapse("a"))
	assert.False(t, tr.Collapse("a"))
}

func TestExpansionTrackerIDsIsACopy(t *testing.T) {
	tr := NewExpansionTracker("a")
	ids := tr.IDs()
	ids[0] = "mutated"
	assert.True(t, tr.IsExpanded("a"))
}

func TestSelectionTrackerSingleMode(t *testing.T) {
	tr := NewSelectionTracker(model.SelectSingle, nil)

	assert.True(t, tr.Select("a"))
	assert.True(t, tr.Select("b"))
	assert.Equal(t, []string{"b"}, tr.IDs())

	// Re-selecting the current node keeps it selected.
	assert.False(t, tr.Select("b"))
	assert.True(t, tr.IsSelected("b"))
	assert.Equal(t, 1, tr.Len())
}

func TestSelectionTrackerMultiMode(t *testing.T) {
	tr := NewSelectionTracker(model.SelectMulti, nil)

	tr.Select("a")
	tr.Select("b")
	assert.Equal(t, []string{"a", "b"}, tr.IDs())

	tr.Select("a")
	assert.Equal(t, []string{"b"}, tr.IDs())
}

func TestSelectionTrackerRejectsDisabledWithStore(t *testing.T) {
	store := NewStore(sampleForest())
	for _, mode := range []model.SelectionMode{model.SelectSingle, model.SelectMulti} {
		t.Run(string(mode), func(t *testing.T) {
			tr := NewSelectionTracker(mode, store)
			assert.False(t, tr.Select("a2"))
			assert.False(t, tr.IsSelected("a2"))

			assert.False(t, tr.Select("missing"))
			assert.Equal(t, 0, tr.Len())

			tr.SetSelected([]string{"a2", "a1"})
			assert.Equal(t, []string{"a1"}, tr.IDs())
		})
	}
}

func TestSelectionTrackerSetSelectedSingleTruncates(t *testing.T) {
	tr := NewSelectionTracker(model.SelectSingle, nil)
	tr.SetSelected([]string{"a", "b", "c"})
	assert.Equal(t, []string{"a"}, tr.IDs())
}

func TestSelectionTrackerSetMode(t *testing.T) {
	tr := NewSelectionTracker(model.SelectMulti, nil)
	tr.SetSelected([]string{"a", "b"})

	tr.SetMode(model.SelectSingle)
	assert.Equal(t, model.SelectSingle, tr.Mode())
	assert.Equal(t, []string{"a"}, tr.IDs())

	tr.SetMode("bogus")
	assert.Equal(t, model.SelectSingle, tr.Mode())
}

func TestSelectionTrackerInvalidModeDefaultsToSingle(t *testing.T) {
	tr := NewSelectionTracker("", nil)
	assert.Equal(t, model.SelectSingle, tr.Mode())
}

func TestSelectionTrackerClear(t *testing.T) {
	tr := NewSelectionTracker(model.SelectMulti, nil)
	tr.SetSelected([]string{"a", "b"})
	tr.Clear()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.IDs())
}

func TestListenersFanOutCopies(t *testing.T) {
	var first, second []string
	ls := Listeners{
		ListenerFunc(func(e ChangeEvent) {
			first = e.IDs
			e.IDs[0] = "mutated"
		}),
		nil,
		ListenerFunc(func(e ChangeEvent) { second = e.IDs }),
	}
	ls.Notify(ChangeEvent{Kind: ExpansionChanged, IDs: []string{"a"}})

	assert.Equal(t, []string{"mutated"}, first)
	assert.Equal(t, []string{"a"}, second)
}

func TestKindFilteredListeners(t *testing.T) {
	var expanded, selected int
	ls := Listeners{
		OnExpandedChange(func([]string) { expanded++ }),
		OnSelectedChange(func([]string) { selected++ }),
	}
	ls.Notify(ChangeEvent{Kind: ExpansionChanged})
	ls.Notify(ChangeEvent{Kind: SelectionChanged})
	ls.Notify(ChangeEvent{Kind: SelectionChanged})

	assert.Equal(t, 1, expanded)
	assert.Equal(t, 2, selected)
	assert.Equal(t, "expansion", ExpansionChanged.String())
	assert.Equal(t, "selection", SelectionChanged.String())
	assert.Equal(t, "ChangeKind(7)", ChangeKind(7).String())
}
