package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
)

// WriteSVG draws rows as an indented outline with elbow connectors.
func WriteSVG(w io.Writer, rows []Row, opts Options) error {
	g := layout(rows, opts)
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	canvas.Start(g.width, g.height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Rect(0, 0, g.width, g.height, "fill:"+colorBackground)
	if opts.Title != "" {
		canvas.Text(margin, margin+13, opts.Title, fmt.Sprintf("fill:%s;font-family:monospace;font-size:14px;font-weight:bold", colorAccent))
	}

	canvas.Gstyle(fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", colorConnector))
	for _, r := range g.rows {
		if xs, ys, ok := g.elbow(r); ok {
			canvas.Polyline(xs, ys)
		}
	}
	canvas.Gend()

	for _, r := range g.rows {
		if r.Selected {
			canvas.Rect(r.cx-markerSize, r.cy-rowHeight/2+1, g.width-r.cx-margin/2, rowHeight-2,
				"fill:"+colorSelection)
		}
		switch {
		case r.Leaf:
			canvas.Circle(r.cx, r.cy, markerSize/4+1, "fill:"+colorLeaf)
		default:
			xs, ys := triangle(r.cx, r.cy, r.Expanded)
			canvas.Polygon(xs, ys, "fill:"+colorAccent)
		}

		fill := colorText
		if r.Disabled {
			fill = colorMuted
		}
		canvas.Text(r.textX, r.cy+4, r.text, fmt.Sprintf("fill:%s;font-family:monospace;font-size:12px", fill))
	}

	canvas.End()
	return ew.err
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
