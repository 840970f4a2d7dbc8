package tree

import "fmt"

// ChangeKind identifies which set an event describes.
type ChangeKind int

const (
	ExpansionChanged ChangeKind = iota
	SelectionChanged
)

func (k ChangeKind) String() string {
	switch k {
	case ExpansionChanged:
		return "expansion"
	case SelectionChanged:
		return "selection"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// ChangeEvent carries the full post-operation id sequence for one set.
type ChangeEvent struct {
	Kind ChangeKind
	IDs  []string
}

// Listener receives change notifications after an operation has completed.
// Calling back into the Controller from OnChange is allowed.
type Listener interface {
	OnChange(event ChangeEvent)
}

// ListenerFunc allows plain functions to satisfy Listener.
type ListenerFunc func(event ChangeEvent)

// OnChange dispatches to the underlying function.
func (fn ListenerFunc) OnChange(event ChangeEvent) {
	if fn == nil {
		return
	}
	fn(event)
}

// Listeners fans out events to zero or more listeners.
type Listeners []Listener

// Enabled reports whether there are any listeners to notify.
func (l Listeners) Enabled() bool {
	return len(l) > 0
}

// Notify forwards the event to every listener in registration order.
// Each listener gets its own copy of the id slice.
func (l Listeners) Notify(event ChangeEvent) {
	for _, listener := range l {
		if listener == nil {
			continue
		}
		ids := make([]string, len(event.IDs))
		copy(ids, event.IDs)
		listener.OnChange(ChangeEvent{Kind: event.Kind, IDs: ids})
	}
}

// OnExpandedChange adapts a callback that only cares about expansion.
func OnExpandedChange(fn func(ids []string)) Listener {
	return ListenerFunc(func(event ChangeEvent) {
		if event.Kind == ExpansionChanged && fn != nil {
			fn(event.IDs)
		}
	})
}

// OnSelectedChange adapts a callback that only cares about selection.
func OnSelectedChange(fn func(ids []string)) Listener {
	return ListenerFunc(func(event ChangeEvent) {
		if event.Kind == SelectionChanged && fn != nil {
			fn(event.IDs)
		}
	})
}
