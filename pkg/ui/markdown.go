package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// MarkdownRenderer wraps glamour and rebuilds it when the width changes.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	theme    Theme
	dark     bool
}

// NewMarkdownRenderer derives the glamour style from theme colors, picking
// the dark or light variant from the theme's renderer.
func NewMarkdownRenderer(width int, theme Theme) *MarkdownRenderer {
	mr := &MarkdownRenderer{width: width, theme: theme}
	if theme.Renderer != nil {
		mr.dark = theme.Renderer.HasDarkBackground()
	} else {
		mr.dark = lipgloss.HasDarkBackground()
	}
	mr.rebuild()
	return mr
}

func (mr *MarkdownRenderer) rebuild() {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyleFromTheme(mr.theme, mr.dark)),
		glamour.WithWordWrap(mr.width),
	)
	if err != nil {
		mr.renderer = nil
		return
	}
	mr.renderer = r
}

// Render converts markdown to styled terminal text. Without a renderer the
// input is returned unchanged.
func (mr *MarkdownRenderer) Render(md string) (string, error) {
	if mr.renderer == nil {
		return md, nil
	}
	out, err := mr.renderer.Render(md)
	if err != nil {
		return md, err
	}
	return strings.TrimRight(out, "\n"), nil
}

// SetWidth rebuilds the renderer for a new wrap width. Non-positive widths are ignored.
func (mr *MarkdownRenderer) SetWidth(width int) {
	if width <= 0 || width == mr.width {
		return
	}
	mr.width = width
	mr.rebuild()
}

func extractHex(c lipgloss.AdaptiveColor, dark bool) string {
	if dark {
		return c.Dark
	}
	return c.Light
}

func buildStyleFromTheme(theme Theme, dark bool) ansi.StyleConfig {
	cfg := styles.LightStyleConfig
	if dark {
		cfg = styles.DarkStyleConfig
	}

	text := strings.ToLower(extractHex(theme.Text, dark))
	primary := extractHex(theme.Primary, dark)
	secondary := extractHex(theme.Secondary, dark)
	muted := extractHex(theme.Muted, dark)

	cfg.Document.Color = &text
	cfg.Heading.Color = &primary
	cfg.H1.Color = &primary
	cfg.Code.Color = &secondary
	cfg.BlockQuote.Color = &muted
	cfg.Strikethrough.Color = &muted
	return cfg
}
