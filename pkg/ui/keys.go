package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists every binding the viewer understands.
type KeyMap struct {
	Up, Down         key.Binding
	PageUp, PageDown key.Binding
	Top, Bottom      key.Binding
	Expand, Collapse key.Binding
	Toggle           key.Binding
	Select           key.Binding
	ClearSelection   key.Binding
	ExpandAll        key.Binding
	CollapseAll      key.Binding
	ToggleAll        key.Binding
	Level            key.Binding
	Parent           key.Binding
	Search           key.Binding
	ClearSearch      key.Binding
	Copy             key.Binding
	Detail           key.Binding
	Help             key.Binding
	Quit             key.Binding
}

// DefaultKeyMap returns vim-style bindings with arrow-key fallbacks.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:             key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:           key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		PageUp:         key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "page up")),
		PageDown:       key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "page down")),
		Top:            key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:         key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Expand:         key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "expand")),
		Collapse:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "collapse")),
		Toggle:         key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "toggle")),
		Select:         key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
		ClearSelection: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear selection")),
		ExpandAll:      key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
		CollapseAll:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
		ToggleAll:      key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "expand/collapse all")),
		Level:          key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "expand to level")),
		Parent:         key.NewBinding(key.WithKeys("p", "backspace"), key.WithHelp("p", "parent")),
		Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		ClearSearch:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Copy:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy selected ids")),
		Detail:         key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is the one-line hint shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Select, k.Search, k.Copy, k.Detail, k.Help, k.Quit}
}

// FullHelp groups every binding for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Parent},
		{k.Expand, k.Collapse, k.Toggle, k.ExpandAll, k.CollapseAll, k.ToggleAll, k.Level},
		{k.Select, k.ClearSelection, k.Search, k.ClearSearch, k.Copy, k.Detail, k.Help, k.Quit},
	}
}
