package export

import (
	"fmt"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// WritePNG rasterizes rows with the built-in 7x13 bitmap font.
func WritePNG(w io.Writer, rows []Row, opts Options) error {
	g := layout(rows, opts)
	dc := gg.NewContext(g.width, g.height)
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetHexColor(colorBackground)
	dc.Clear()

	if opts.Title != "" {
		dc.SetHexColor(colorAccent)
		dc.DrawString(opts.Title, margin, margin+13)
	}

	dc.SetHexColor(colorConnector)
	dc.SetLineWidth(1)
	for _, r := range g.rows {
		xs, ys, ok := g.elbow(r)
		if !ok {
			continue
		}
		dc.MoveTo(float64(xs[0]), float64(ys[0]))
		for i := 1; i < len(xs); i++ {
			dc.LineTo(float64(xs[i]), float64(ys[i]))
		}
		dc.Stroke()
	}

	for _, r := range g.rows {
		if r.Selected {
			dc.SetHexColor(colorSelection)
			dc.DrawRectangle(float64(r.cx-markerSize), float64(r.cy-rowHeight/2+1),
				float64(g.width-r.cx-margin/2), float64(rowHeight-2))
			dc.Fill()
		}

		if r.Leaf {
			dc.SetHexColor(colorLeaf)
			dc.DrawCircle(float64(r.cx), float64(r.cy), float64(markerSize/4+1))
			dc.Fill()
		} else {
			xs, ys := triangle(r.cx, r.cy, r.Expanded)
			dc.SetHexColor(colorAccent)
			dc.MoveTo(float64(xs[0]), float64(ys[0]))
			dc.LineTo(float64(xs[1]), float64(ys[1]))
			dc.LineTo(float64(xs[2]), float64(ys[2]))
			dc.ClosePath()
			dc.Fill()
		}

		if r.Disabled {
			dc.SetHexColor(colorMuted)
		} else {
			dc.SetHexColor(colorText)
		}
		dc.DrawString(r.text, float64(r.textX), float64(r.cy+4))
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
