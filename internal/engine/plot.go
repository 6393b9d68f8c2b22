package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"honnef.co/go/curve"
)

var (
	ErrTooManyGraphs = errors.New("too many graphs")
	ErrGraphNotFound = errors.New("graph not found")
)

// DefaultHitTolerance is the pick radius in pixels used by HitTest callers
// that have no preference.
const DefaultHitTolerance = 4.0

// PlotOptions are injected once at construction.
type PlotOptions struct {
	Domain    Domain   // initial domain of new graphs
	Viewport  Viewport // initial pane geometry
	MaxGraphs int
	NewID     func() string // graph id generator; sequential ids when nil
}

// Plot owns the graphs drawn on one pane and the pane's viewport.
// Like Graph it is meant for a single caller at a time.
type Plot struct {
	opts     PlotOptions
	viewport Viewport
	domain   Domain
	graphs   []*Graph
	seq      int
}

// NewPlot creates a plot with no graphs.
func NewPlot(opts PlotOptions) *Plot {
	if opts.MaxGraphs <= 0 {
		opts.MaxGraphs = 1
	}
	return &Plot{
		opts:     opts,
		viewport: opts.Viewport,
		domain:   opts.Domain,
	}
}

// --- Commands ---

// AddGraph appends an empty graph coloured by its position.
func (p *Plot) AddGraph() (*Graph, error) {
	if !p.CanAddGraph() {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyGraphs, p.opts.MaxGraphs)
	}
	g := NewGraph(p.nextID(), GraphOptions{
		Domain:   p.domain,
		Viewport: p.viewport,
		Color:    PaletteColor(len(p.graphs), p.opts.MaxGraphs),
	})
	p.graphs = append(p.graphs, g)
	return g, nil
}

// RemoveGraph deletes a graph.
func (p *Plot) RemoveGraph(id string) error {
	for i, g := range p.graphs {
		if g.ID() == id {
			p.graphs = append(p.graphs[:i], p.graphs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrGraphNotFound, id)
}

// Clear removes every graph.
func (p *Plot) Clear() {
	p.graphs = nil
}

// SetExpression forwards to the graph's SetExpression.
func (p *Plot) SetExpression(id, src string) error {
	g, err := p.lookup(id)
	if err != nil {
		return err
	}
	return g.SetExpression(src)
}

// SetVisible forwards to the graph's SetVisible.
func (p *Plot) SetVisible(id string, visible bool) error {
	g, err := p.lookup(id)
	if err != nil {
		return err
	}
	g.SetVisible(visible)
	return nil
}

// LoadExpressions adds one graph per expression, in order. A rejected
// expression still gets its graph, left in the error state; the returned
// error joins every rejection.
func (p *Plot) LoadExpressions(srcs []string) error {
	var errs []error
	for i, src := range srcs {
		g, err := p.AddGraph()
		if err != nil {
			errs = append(errs, fmt.Errorf("expression %d: %w", i+1, err))
			break
		}
		if err := g.SetExpression(src); err != nil {
			errs = append(errs, fmt.Errorf("expression %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// SetViewport changes the pane geometry and rescales every graph. A
// viewport whose domain cannot be sampled is rejected without changing
// anything. Graphs that fail to resample keep their previous samples,
// remapped onto the new pane; the errors are joined.
func (p *Plot) SetViewport(vp Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}
	domain := vp.Domain()
	if n := domain.SampleCount(); n > MaxSamples {
		return fmt.Errorf("%w: viewport spans more than %d points", ErrTooManySamples, MaxSamples)
	}
	p.viewport = vp
	p.domain = domain

	var errs []error
	for _, g := range p.graphs {
		if err := g.Rescale(vp); err != nil {
			g.RecomputeSegments(vp)
			errs = append(errs, fmt.Errorf("graph %s: %w", g.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Pan moves the origin by (dx, dy) pixels.
func (p *Plot) Pan(dx, dy float64) error {
	vp := p.viewport
	vp.CenterX += dx
	vp.CenterY += dy
	return p.SetViewport(vp)
}

// Zoom multiplies the scale by factor keeping the domain point under
// (anchorX, anchorY) in place on screen.
func (p *Plot) Zoom(factor, anchorX, anchorY float64) error {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: zoom factor %g", ErrInvalidViewport, factor)
	}
	vp := p.viewport
	x, y := vp.ToDomain(anchorX, anchorY)
	vp.Scale *= factor
	vp.CenterX = anchorX - x*vp.Scale
	vp.CenterY = anchorY + y*vp.Scale
	return p.SetViewport(vp)
}

// --- Queries ---

// Graph returns the graph with the given id.
func (p *Plot) Graph(id string) (*Graph, bool) {
	g, err := p.lookup(id)
	return g, err == nil
}

// Graphs returns the graphs in insertion order.
func (p *Plot) Graphs() []*Graph {
	return append([]*Graph(nil), p.graphs...)
}

// Len returns the number of graphs.
func (p *Plot) Len() int { return len(p.graphs) }

// CanAddGraph reports whether the graph limit has room left.
func (p *Plot) CanAddGraph() bool { return len(p.graphs) < p.opts.MaxGraphs }

// MaxGraphs returns the graph limit.
func (p *Plot) MaxGraphs() int { return p.opts.MaxGraphs }

// Expressions returns the accepted expression of every graph that has one,
// in order. This is what gets persisted.
func (p *Plot) Expressions() []string {
	out := make([]string, 0, len(p.graphs))
	for _, g := range p.graphs {
		if g.Expression() != "" {
			out = append(out, g.Expression())
		}
	}
	return out
}

// Viewport returns the pane geometry.
func (p *Plot) Viewport() Viewport { return p.viewport }

// Domain returns the domain new graphs start with.
func (p *Plot) Domain() Domain { return p.domain }

// Render compiles the visible curves into draw commands.
func (p *Plot) Render() []DrawCommand {
	return CompileDrawCommands(p.viewport, p.graphs)
}

// RenderJSON returns Render as JSON.
func (p *Plot) RenderJSON() string {
	result, err := DrawCommandsToJSON(p.Render())
	if err != nil {
		return "[]"
	}
	return result
}

// HitTest returns the id of the visible graph passing closest to the
// device point within tolerance pixels, or "".
func (p *Plot) HitTest(px, py, tolerance float64) string {
	pt := curve.Pt(px, py)
	best := ""
	bestSq := math.Inf(1)
	for _, g := range p.graphs {
		if !g.Visible() {
			continue
		}
		bounds, ok := g.Bounds()
		if !ok || !bounds.Inflate(tolerance, tolerance).Contains(pt) {
			continue
		}
		for _, s := range g.segments {
			if !s.IsFinite() {
				continue
			}
			if dSq, _ := s.Line().Nearest(pt, 0); dSq <= tolerance*tolerance && dSq < bestSq {
				best, bestSq = g.ID(), dSq
			}
		}
	}
	return best
}

// DeviceToDomain converts a pane position to domain coordinates. A
// degenerate viewport maps every position to NaN.
func (p *Plot) DeviceToDomain(px, py float64) (float64, float64) {
	inv, ok := p.viewport.Matrix().Invert()
	if !ok {
		return math.NaN(), math.NaN()
	}
	return inv.TransformPoint(px, py)
}

func (p *Plot) lookup(id string) (*Graph, error) {
	for _, g := range p.graphs {
		if g.ID() == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, id)
}

func (p *Plot) nextID() string {
	if p.opts.NewID != nil {
		return p.opts.NewID()
	}
	p.seq++
	return "graph_" + strconv.Itoa(p.seq)
}
