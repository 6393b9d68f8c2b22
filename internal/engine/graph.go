package engine

import (
	"errors"
	"fmt"

	"github.com/plotline/plotline/internal/expr"
)

// MaxSamples bounds a single resample.
const MaxSamples = 1 << 20

// ErrTooManySamples is returned when a domain would exceed MaxSamples.
var ErrTooManySamples = errors.New("too many samples")

// State is the lifecycle state of a Graph.
type State int

const (
	StateEmpty State = iota // no expression accepted yet
	StateValid              // last resample succeeded
	StateError              // last resample failed, previous curve retained
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateValid:
		return "valid"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// GraphOptions are the plain values a Graph starts from.
type GraphOptions struct {
	Domain   Domain
	Viewport Viewport
	Color    string
}

// Graph samples one expression over a domain and maps the samples onto
// device segments. A Graph is not safe for concurrent use.
//
// Every resample is all-or-nothing: when any sample point fails, the
// expression, domain, samples and segments from the last success are kept.
type Graph struct {
	id    string
	color string

	expression string
	input      string
	program    *expr.Program

	domain   Domain
	viewport Viewport
	samples  []float64
	segments []Segment

	visible bool
	state   State
	err     error
}

// NewGraph creates an empty, visible graph.
func NewGraph(id string, opts GraphOptions) *Graph {
	return &Graph{
		id:       id,
		color:    opts.Color,
		domain:   opts.Domain,
		viewport: opts.Viewport,
		visible:  true,
	}
}

// SetExpression compiles src and resamples the current domain with it.
func (g *Graph) SetExpression(src string) error {
	g.input = src

	prog, err := expr.Compile(src)
	if err != nil {
		return g.reject(err)
	}
	samples, err := sample(prog, g.domain)
	if err != nil {
		return g.reject(err)
	}

	g.expression = src
	g.program = prog
	g.accept(g.domain, g.viewport, samples)
	return nil
}

// RecomputeSegments remaps the current samples into vp. It never
// evaluates the expression.
func (g *Graph) RecomputeSegments(vp Viewport) {
	g.viewport = vp
	g.segments = mapSegments(g.samples, g.domain, vp)
}

// Rescale derives the domain from vp and resamples the stored expression.
// Without an expression only the geometry is recorded.
func (g *Graph) Rescale(vp Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}
	domain := vp.Domain()

	if g.program == nil {
		g.domain = domain
		g.viewport = vp
		return nil
	}

	samples, err := sample(g.program, domain)
	if err != nil {
		return g.reject(err)
	}
	g.accept(domain, vp, samples)
	return nil
}

func (g *Graph) accept(domain Domain, vp Viewport, samples []float64) {
	g.domain = domain
	g.viewport = vp
	g.samples = samples
	g.segments = mapSegments(samples, domain, vp)
	g.state = StateValid
	g.err = nil
}

func (g *Graph) reject(err error) error {
	g.state = StateError
	g.err = err
	return err
}

// SetVisible toggles the display flag only.
func (g *Graph) SetVisible(v bool) { g.visible = v }

// Visible reports whether renderers should draw the graph.
func (g *Graph) Visible() bool { return g.visible }

// ID returns the graph identifier.
func (g *Graph) ID() string { return g.id }

// Expression returns the last accepted expression, or "" when empty.
func (g *Graph) Expression() string { return g.expression }

// Input returns the last submitted expression, accepted or not.
func (g *Graph) Input() string { return g.input }

// Color returns the stroke colour.
func (g *Graph) Color() string { return g.color }

// SetColor replaces the stroke colour.
func (g *Graph) SetColor(c string) { g.color = c }

// Domain returns the domain of the current samples.
func (g *Graph) Domain() Domain { return g.domain }

// Scale returns the scale the current samples were taken at.
func (g *Graph) Scale() float64 { return g.viewport.Scale }

// Viewport returns the viewport the segments are mapped into.
func (g *Graph) Viewport() Viewport { return g.viewport }

// State returns the lifecycle state.
func (g *Graph) State() State { return g.state }

// Err returns the error of the last failed resample while in StateError.
func (g *Graph) Err() error { return g.err }

// Samples returns a copy of the sample values.
func (g *Graph) Samples() []float64 {
	return append([]float64(nil), g.samples...)
}

// Segments returns a copy of the device segments.
func (g *Graph) Segments() []Segment {
	return append([]Segment(nil), g.segments...)
}

// SegmentCount returns len(Segments()) without copying.
func (g *Graph) SegmentCount() int { return len(g.segments) }

// Bounds returns the device bounding box of the drawable segments.
func (g *Graph) Bounds() (Rect, bool) {
	return segmentBounds(g.segments)
}

func sample(prog *expr.Program, d Domain) ([]float64, error) {
	n := d.SampleCount()
	if n > MaxSamples {
		return nil, fmt.Errorf("%w: %d points over [%g, %g] step %g", ErrTooManySamples, n, d.Begin, d.End, d.Step)
	}
	samples := make([]float64, n)
	for i := range samples {
		x := d.At(i)
		v, err := prog.Eval(x)
		if err != nil {
			return nil, fmt.Errorf("evaluate at x=%g: %w", x, err)
		}
		samples[i] = v
	}
	return samples, nil
}

func mapSegments(samples []float64, d Domain, vp Viewport) []Segment {
	if len(samples) < 2 {
		return nil
	}
	segments := make([]Segment, len(samples)-1)
	x1, y1 := vp.ToDevice(d.At(0), samples[0])
	for i := range segments {
		x2, y2 := vp.ToDevice(d.At(i+1), samples[i+1])
		segments[i] = Segment{X1: x1, Y1: y1, X2: x2, Y2: y2}
		x1, y1 = x2, y2
	}
	return segments
}
