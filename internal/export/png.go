package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"
	"honnef.co/go/curve"

	"github.com/plotline/plotline/internal/engine"
)

const (
	maxRasterSide = 4096

	backgroundHex = "#1a1a2e"
	axisHex       = "#505050"
	axisWidth     = 1
	curveWidth    = 2
)

// Rasterize draws the axes and the visible curves of graphs onto an image
// the size of the viewport's pane, the same picture the draw commands
// describe.
func Rasterize(vp engine.Viewport, graphs []*engine.Graph) (image.Image, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	w, h := int(math.Ceil(vp.Width)), int(math.Ceil(vp.Height))
	if w > maxRasterSide || h > maxRasterSide {
		return nil, fmt.Errorf("pane %dx%d exceeds %d pixels", w, h, maxRasterSide)
	}

	dc := gg.NewContext(w, h)
	dc.SetHexColor(backgroundHex)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	dc.SetHexColor(axisHex)
	dc.SetLineWidth(axisWidth)
	dc.MoveTo(vp.CenterX, 0)
	dc.LineTo(vp.CenterX, vp.Height)
	dc.MoveTo(0, vp.CenterY)
	dc.LineTo(vp.Width, vp.CenterY)
	dc.Stroke()

	// Segments are clipped a little outside the pane so stroke ends stay
	// off-image.
	view := curve.Rect{X1: float64(w), Y1: float64(h)}.Inflate(curveWidth*2, curveWidth*2)

	dc.SetLineWidth(curveWidth)
	for _, g := range graphs {
		if !g.Visible() {
			continue
		}
		if tracePath(dc, view, g.Segments()) {
			dc.SetHexColor(g.Color())
			dc.Stroke()
		}
	}
	return dc.Image(), nil
}

// tracePath adds the graph's polyline to the current path, lifting the pen
// at non-finite segments and wherever clipping cuts the curve. It reports
// whether anything was added.
func tracePath(dc *gg.Context, view curve.Rect, segments []engine.Segment) bool {
	var last curve.Point
	penDown, drawn := false, false
	for _, s := range segments {
		if !s.IsFinite() {
			penDown = false
			continue
		}
		l, ok := clipLine(view, s.Line())
		if !ok {
			penDown = false
			continue
		}
		if !penDown || l.P0.Sub(last).Hypot2() > 1e-12 {
			dc.MoveTo(l.P0.X, l.P0.Y)
		}
		dc.LineTo(l.P1.X, l.P1.Y)
		last, penDown, drawn = l.P1, true, true
	}
	return drawn
}

// clipLine cuts l to r (Liang-Barsky). Samples of steep curves land
// millions of pixels off the pane, far outside the float32 range the
// rasterizer works in, so every segment goes through here first.
func clipLine(r curve.Rect, l curve.Line) (curve.Line, bool) {
	d := l.P1.Sub(l.P0)
	t0, t1 := 0.0, 1.0
	for _, pq := range [4][2]float64{
		{-d.X, l.P0.X - r.X0},
		{d.X, r.X1 - l.P0.X},
		{-d.Y, l.P0.Y - r.Y0},
		{d.Y, r.Y1 - l.P0.Y},
	} {
		p, q := pq[0], pq[1]
		if p == 0 {
			if q < 0 {
				return curve.Line{}, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return curve.Line{}, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return curve.Line{}, false
			}
			t1 = min(t1, t)
		}
	}
	clipped := l.Subsegment(t0, t1)
	if clipped.IsNaN() || clipped.IsInf() {
		return curve.Line{}, false
	}
	return clipped, true
}

// WritePNG encodes Rasterize's output.
func WritePNG(w io.Writer, vp engine.Viewport, graphs []*engine.Graph) error {
	img, err := Rasterize(vp, graphs)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
