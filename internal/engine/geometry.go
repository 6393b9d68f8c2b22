package engine

import (
	"math"

	"honnef.co/go/curve"
)

// Segment is a device-space line joining two consecutive samples.
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Line returns the segment as a curve line.
func (s Segment) Line() curve.Line {
	return curve.Line{P0: curve.Pt(s.X1, s.Y1), P1: curve.Pt(s.X2, s.Y2)}
}

// IsFinite reports whether both endpoints are drawable.
func (s Segment) IsFinite() bool {
	l := s.Line()
	return !l.IsInf() && !l.IsNaN()
}

// Rect is an axis-aligned device box, X0 <= X1 and Y0 <= Y1.
type Rect = curve.Rect

// segmentBounds returns the bounding box of the finite segments and
// whether there was any.
func segmentBounds(segments []Segment) (Rect, bool) {
	var box Rect
	found := false
	for _, s := range segments {
		if !s.IsFinite() {
			continue
		}
		b := s.Line().BoundingBox().Abs()
		if found {
			box = box.Union(b)
		} else {
			box, found = b, true
		}
	}
	return box, found
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
