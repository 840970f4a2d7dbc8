// Package ui provides the terminal viewer for treekit forests.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and styles shared by every view.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Leaf      lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style // row under the cursor
	Marked   lipgloss.Style // rows in the selection set
	Disabled lipgloss.Style
	Status   lipgloss.Style
}

// DefaultTheme returns the Dracula-flavored theme bound to r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Highlight: lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#F1FA8C"},
		Muted:     lipgloss.AdaptiveColor{Light: "#888888", Dark: "#6272A4"},
		Leaf:      lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Text:      lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"},
	}

	t.Base = r.NewStyle().Foreground(t.Text)
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"}).
		Bold(true)
	t.Marked = r.NewStyle().Foreground(t.Highlight)
	t.Disabled = r.NewStyle().Foreground(t.Muted).Strikethrough(true)
	t.Status = r.NewStyle().
		Foreground(t.Text).
		Background(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#282A36"}).
		Padding(0, 1)
	return t
}
