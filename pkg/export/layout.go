// Package export renders the visible projection of a tree to SVG, PNG and
// Markdown.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/treekit/pkg/tree"
)

// Row is one visible node with the flags a renderer needs.
type Row struct {
	ID       string
	Label    string
	Depth    int
	Parent   int // index of the parent row, -1 for roots
	Leaf     bool
	Expanded bool
	Selected bool
	Disabled bool
}

// RowsFrom captures the controller's current projection.
func RowsFrom(c *tree.Controller) []Row {
	visible := c.VisibleNodes()
	rows := make([]Row, 0, len(visible))
	// last[d] is the most recent row index at depth d
	var last []int
	for _, v := range visible {
		parent := -1
		if v.Depth > 0 && v.Depth-1 < len(last) {
			parent = last[v.Depth-1]
		}
		if v.Depth < len(last) {
			last = last[:v.Depth]
		}
		last = append(last, len(rows))

		rows = append(rows, Row{
			ID:       v.Node.ID,
			Label:    v.Node.DisplayLabel(),
			Depth:    v.Depth,
			Parent:   parent,
			Leaf:     v.Node.IsLeaf(),
			Expanded: c.IsExpanded(v.Node.ID),
			Selected: c.IsSelected(v.Node.ID),
			Disabled: v.Node.Disabled,
		})
	}
	return rows
}

// Options control image output.
type Options struct {
	Title   string
	ShowIDs bool
}

func (o Options) text(r Row) string {
	if o.ShowIDs && r.Label != r.ID {
		return fmt.Sprintf("%s (%s)", r.Label, r.ID)
	}
	return r.Label
}

const (
	margin     = 12
	rowHeight  = 22
	indent     = 20
	markerSize = 8
	charWidth  = 7 // basicfont.Face7x13 advance
	titleGap   = 26
)

// Palette
const (
	colorBackground = "#282A36"
	colorText       = "#F8F8F2"
	colorMuted      = "#6272A4"
	colorSelection  = "#44475A"
	colorAccent     = "#BD93F9"
	colorLeaf       = "#50FA7B"
	colorConnector  = "#6272A4"
)

type placedRow struct {
	Row
	cx, cy int // marker center
	textX  int
	text   string
}

type geometry struct {
	width, height int
	top           int
	rows          []placedRow
}

func layout(rows []Row, opts Options) geometry {
	g := geometry{top: margin}
	if opts.Title != "" {
		g.top += titleGap
	}
	maxRight := margin + runewidth.StringWidth(opts.Title)*charWidth
	for i, r := range rows {
		p := placedRow{Row: r, text: opts.text(r)}
		p.cx = margin + r.Depth*indent + markerSize/2
		p.cy = g.top + i*rowHeight + rowHeight/2
		p.textX = p.cx + markerSize
		if right := p.textX + runewidth.StringWidth(p.text)*charWidth; right > maxRight {
			maxRight = right
		}
		g.rows = append(g.rows, p)
	}
	g.width = maxRight + margin
	g.height = g.top + len(rows)*rowHeight + margin
	return g
}

// elbow returns the connector points from a parent marker to a child marker.
func (g geometry) elbow(child placedRow) (xs, ys []int, ok bool) {
	if child.Parent < 0 || child.Parent >= len(g.rows) {
		return nil, nil, false
	}
	parent := g.rows[child.Parent]
	return []int{parent.cx, parent.cx, child.cx - markerSize/2 - 2},
		[]int{parent.cy + markerSize/2 + 2, child.cy, child.cy}, true
}

// triangle returns the marker polygon: pointing down when expanded, right when collapsed.
func triangle(cx, cy int, expanded bool) (xs, ys []int) {
	h := markerSize / 2
	if expanded {
		return []int{cx - h, cx + h, cx}, []int{cy - h/2, cy - h/2, cy + h}
	}
	return []int{cx - h/2, cx - h/2, cx + h}, []int{cy - h, cy + h, cy}
}

// Format is an output encoding.
type Format string

const (
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
	FormatMarkdown Format = "md"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Write renders c's projection to w.
func Write(w io.Writer, format Format, c *tree.Controller, opts Options) error {
	rows := RowsFrom(c)
	switch format {
	case FormatSVG:
		return WriteSVG(w, rows, opts)
	case FormatPNG:
		return WritePNG(w, rows, opts)
	case FormatMarkdown:
		_, err := io.WriteString(w, GenerateMarkdown(rows, opts.Title))
		return err
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// SaveToFile writes the projection to path. An empty format is taken from
// the file extension.
func SaveToFile(path string, format Format, c *tree.Controller, opts Options) error {
	if format == "" {
		f, err := ParseFormat(filepath.Ext(path))
		if err != nil {
			return err
		}
		format = f
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(file, format, c, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
