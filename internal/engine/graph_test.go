package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/plotline/plotline/internal/expr"
)

var unitViewport = Viewport{Scale: 1, Width: 4, Height: 4}

func newTestGraph(d Domain, vp Viewport) *Graph {
	return NewGraph("g1", GraphOptions{Domain: d, Viewport: vp, Color: "#ff1919"})
}

func TestGraphEndToEnd(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	if err := g.SetExpression("x^2"); err != nil {
		t.Fatal(err)
	}

	diff(t, []float64{4, 1, 0, 1, 4}, g.Samples())
	segs := g.Segments()
	if len(segs) != len(g.Samples())-1 {
		t.Fatalf("got %d segments for %d samples", len(segs), len(g.Samples()))
	}
	diff(t, []float64{-2, -4}, []float64{segs[0].X1, segs[0].Y1})
	diff(t, Segment{X1: 1, Y1: -1, X2: 2, Y2: -4}, segs[3])

	if g.State() != StateValid || g.Err() != nil {
		t.Errorf("got state %v err %v", g.State(), g.Err())
	}
	if g.Expression() != "x^2" {
		t.Errorf("got expression %q", g.Expression())
	}
}

func TestGraphEmpty(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	if g.State() != StateEmpty {
		t.Errorf("got state %v, want empty", g.State())
	}
	if len(g.Samples()) != 0 || len(g.Segments()) != 0 || g.Expression() != "" {
		t.Error("new graph should hold nothing")
	}
	if !g.Visible() {
		t.Error("new graph should be visible")
	}
}

func TestSegmentsAreContiguous(t *testing.T) {
	g := newTestGraph(Domain{Begin: -3, End: 3, Step: 0.25}, Viewport{Scale: 17, CenterX: 55, CenterY: 90, Width: 200, Height: 200})
	if err := g.SetExpression("sin(x) * x"); err != nil {
		t.Fatal(err)
	}
	segs := g.Segments()
	for i := 0; i+1 < len(segs); i++ {
		if segs[i].X2 != segs[i+1].X1 || segs[i].Y2 != segs[i+1].Y1 {
			t.Fatalf("segment %d ends at (%g, %g) but %d starts at (%g, %g)",
				i, segs[i].X2, segs[i].Y2, i+1, segs[i+1].X1, segs[i+1].Y1)
		}
	}
	if len(segs) != g.SegmentCount() {
		t.Errorf("SegmentCount %d != %d", g.SegmentCount(), len(segs))
	}
}

func TestSetExpressionRejectsAtomically(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 0.5}, Viewport{Scale: 10, CenterX: 20, CenterY: 20, Width: 40, Height: 40})
	if err := g.SetExpression("x^2"); err != nil {
		t.Fatal(err)
	}
	samples, segments, domain := g.Samples(), g.Segments(), g.Domain()

	tests := []struct {
		src  string
		want error
	}{
		{"x^", expr.ErrSyntax},
		{"x + y", expr.ErrUnknownIdentifier},
		{"sin(x, 1)", expr.ErrArity},
		{"sqrt(x)", expr.ErrDomain},
		{"x\n+1", expr.ErrSyntax},
	}
	for _, tt := range tests {
		err := g.SetExpression(tt.src)
		if !errors.Is(err, tt.want) {
			t.Errorf("SetExpression(%q): got %v, want %v", tt.src, err, tt.want)
		}
		diff(t, samples, g.Samples())
		diff(t, segments, g.Segments())
		diff(t, domain, g.Domain())
		if g.Expression() != "x^2" {
			t.Errorf("expression changed to %q", g.Expression())
		}
		if g.Input() != tt.src {
			t.Errorf("got input %q, want %q", g.Input(), tt.src)
		}
		if g.State() != StateError || !errors.Is(g.Err(), tt.want) {
			t.Errorf("got state %v err %v", g.State(), g.Err())
		}
	}

	if err := g.SetExpression("2*x"); err != nil {
		t.Fatal(err)
	}
	if g.State() != StateValid || g.Err() != nil {
		t.Errorf("recovery: got state %v err %v", g.State(), g.Err())
	}
}

func TestSetExpressionFailureFromEmpty(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	if err := g.SetExpression("(("); err == nil {
		t.Fatal("expected error")
	}
	if g.State() != StateError {
		t.Errorf("got state %v", g.State())
	}
	if len(g.Samples()) != 0 || len(g.Segments()) != 0 {
		t.Error("failed first edit must not produce a curve")
	}
}

func TestRecomputeSegments(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 0.5}, unitViewport)
	if err := g.SetExpression("x^3"); err != nil {
		t.Fatal(err)
	}
	samples := g.Samples()

	vp := Viewport{Scale: 30, CenterX: 100, CenterY: 80, Width: 200, Height: 160}
	g.RecomputeSegments(vp)
	first := g.Segments()
	g.RecomputeSegments(vp)
	diff(t, first, g.Segments())

	diff(t, samples, g.Samples())
	diff(t, Segment{X1: 40, Y1: 320, X2: 55, Y2: 181.25}, first[0])
	if g.Viewport() != vp {
		t.Errorf("viewport not stored: %+v", g.Viewport())
	}
}

func TestRecomputeSegmentsOnEmptyGraph(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	g.RecomputeSegments(Viewport{Scale: 2, Width: 10, Height: 10})
	if g.SegmentCount() != 0 {
		t.Errorf("got %d segments", g.SegmentCount())
	}
}

func TestRescale(t *testing.T) {
	g := newTestGraph(Domain{Begin: -100, End: 100, Step: 0.1}, Viewport{Scale: 20, CenterX: 200, CenterY: 200, Width: 400, Height: 400})
	if err := g.SetExpression("x"); err != nil {
		t.Fatal(err)
	}
	if n := len(g.Samples()); n != 2001 {
		t.Fatalf("got %d samples, want 2001", n)
	}

	vp := Viewport{Scale: 40, CenterX: 100, CenterY: 200, Width: 400, Height: 400}
	if err := g.Rescale(vp); err != nil {
		t.Fatal(err)
	}
	d := g.Domain()
	if d.Begin != -2.5 || d.End != 7.5 || d.Step != 0.05 {
		t.Errorf("got domain %+v", d)
	}
	if g.Scale() != 40 {
		t.Errorf("got scale %g", g.Scale())
	}
	if n := len(g.Samples()); n != 201 {
		t.Errorf("got %d samples, want 201", n)
	}
	segs := g.Segments()
	diff(t, []float64{0, 300}, []float64{segs[0].X1, segs[0].Y1})
}

func TestRescaleWithoutExpression(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	vp := Viewport{Scale: 10, CenterX: 50, CenterY: 50, Width: 100, Height: 100}
	if err := g.Rescale(vp); err != nil {
		t.Fatalf("rescale of empty graph: %v", err)
	}
	if g.State() != StateEmpty || len(g.Samples()) != 0 {
		t.Errorf("empty graph was resampled: state %v", g.State())
	}
	diff(t, vp.Domain(), g.Domain())

	// The stored geometry is used by the first expression.
	if err := g.SetExpression("1"); err != nil {
		t.Fatal(err)
	}
	if n := len(g.Samples()); n != 51 {
		t.Errorf("got %d samples, want 51", n)
	}
}

func TestRescaleRejectsAtomically(t *testing.T) {
	// Origin on the left edge: the domain starts at 0, so sqrt is defined.
	vp := Viewport{Scale: 10, CenterX: 0, CenterY: 100, Width: 200, Height: 200}
	g := newTestGraph(vp.Domain(), vp)
	if err := g.SetExpression("sqrt(x)"); err != nil {
		t.Fatal(err)
	}
	samples, segments, domain := g.Samples(), g.Segments(), g.Domain()

	panned := vp
	panned.CenterX = 100
	err := g.Rescale(panned)
	if !errors.Is(err, expr.ErrDomain) {
		t.Fatalf("got %v, want domain error", err)
	}
	diff(t, samples, g.Samples())
	diff(t, segments, g.Segments())
	diff(t, domain, g.Domain())
	if g.Scale() != 10 || g.Viewport() != vp {
		t.Errorf("geometry changed: %+v", g.Viewport())
	}
	if g.State() != StateError {
		t.Errorf("got state %v", g.State())
	}
	if g.Expression() != "sqrt(x)" {
		t.Errorf("got expression %q", g.Expression())
	}
}

func TestRescaleInvalidViewport(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	if err := g.SetExpression("x"); err != nil {
		t.Fatal(err)
	}
	before := g.Segments()
	if err := g.Rescale(Viewport{Scale: 0, Width: 10, Height: 10}); !errors.Is(err, ErrInvalidViewport) {
		t.Fatalf("got %v", err)
	}
	diff(t, before, g.Segments())
	if g.State() != StateValid {
		t.Errorf("invalid geometry should not mark the curve failed, got %v", g.State())
	}
}

func TestSetVisible(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	if err := g.SetExpression("x"); err != nil {
		t.Fatal(err)
	}
	before := g.Segments()
	g.SetVisible(false)
	if g.Visible() {
		t.Error("still visible")
	}
	diff(t, before, g.Segments())
	g.SetVisible(true)
	if !g.Visible() {
		t.Error("not visible")
	}
}

func TestInfiniteSamplesAreKept(t *testing.T) {
	g := newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	if err := g.SetExpression("1/x"); err != nil {
		t.Fatal(err)
	}
	s := g.Samples()
	if !math.IsInf(s[2], 1) {
		t.Errorf("1/0 sample = %g, want +Inf", s[2])
	}
	segs := g.Segments()
	if !segs[0].IsFinite() || segs[1].IsFinite() || segs[2].IsFinite() || !segs[3].IsFinite() {
		t.Error("only segments touching x=0 should be non-finite")
	}
}

func TestTooManySamples(t *testing.T) {
	g := newTestGraph(Domain{Begin: 0, End: 1, Step: 1e-9}, unitViewport)
	if err := g.SetExpression("x"); !errors.Is(err, ErrTooManySamples) {
		t.Fatalf("got %v, want ErrTooManySamples", err)
	}

	// A finite pane so wide that the point count overflows an int.
	g = newTestGraph(Domain{Begin: -2, End: 2, Step: 1}, unitViewport)
	if err := g.SetExpression("x"); err != nil {
		t.Fatal(err)
	}
	before := g.Samples()
	if err := g.Rescale(Viewport{Scale: 1, Width: 1e30, Height: 10}); !errors.Is(err, ErrTooManySamples) {
		t.Fatalf("got %v, want ErrTooManySamples", err)
	}
	diff(t, before, g.Samples())
	if g.State() != StateError {
		t.Errorf("got state %v", g.State())
	}
}

func TestSampleCountSaturates(t *testing.T) {
	for _, tt := range []struct{ begin, end, step float64 }{
		{0, 1e30, 1},
		{0, math.MaxFloat64, 1e-300},
		{-1e300, 1e300, 1e-10},
	} {
		if got := SampleCount(tt.begin, tt.end, tt.step); got != MaxSamples+1 {
			t.Errorf("SampleCount(%g, %g, %g) = %d, want %d", tt.begin, tt.end, tt.step, got, MaxSamples+1)
		}
	}
}

func TestStateString(t *testing.T) {
	diff(t, []string{"empty", "valid", "error"}, []string{StateEmpty.String(), StateValid.String(), StateError.String()})
}
