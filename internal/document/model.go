package document

import (
	"github.com/plotline/plotline/internal/engine"
)

// PlotDocument is the wire form of a plot shared by the REST API, the
// websocket sync and the wasm bridge.
type PlotDocument struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Viewport  engine.Viewport `json:"viewport"`
	Domain    engine.Domain   `json:"domain"`
	MaxGraphs int             `json:"maxGraphs"`
	Graphs    []GraphDocument `json:"graphs"`
}

// GraphDocument describes one curve. Input differs from Expression when the
// last edit was rejected; Error then carries the reason.
type GraphDocument struct {
	ID         string        `json:"id"`
	Expression string        `json:"expression"`
	Input      string        `json:"input,omitempty"`
	Color      string        `json:"color"`
	Visible    bool          `json:"visible"`
	State      string        `json:"state"`
	Error      string        `json:"error,omitempty"`
	ErrorKind  string        `json:"errorKind,omitempty"`
	Domain     engine.Domain `json:"domain"`
	Samples    int           `json:"samples"`
}

// FromPlot snapshots p.
func FromPlot(id, name string, p *engine.Plot) *PlotDocument {
	doc := &PlotDocument{
		ID:        id,
		Name:      name,
		Viewport:  p.Viewport(),
		Domain:    p.Domain(),
		MaxGraphs: p.MaxGraphs(),
		Graphs:    make([]GraphDocument, 0, p.Len()),
	}
	for _, g := range p.Graphs() {
		doc.Graphs = append(doc.Graphs, FromGraph(g))
	}
	return doc
}

// FromGraph snapshots a single graph.
func FromGraph(g *engine.Graph) GraphDocument {
	gd := GraphDocument{
		ID:         g.ID(),
		Expression: g.Expression(),
		Color:      g.Color(),
		Visible:    g.Visible(),
		State:      g.State().String(),
		Domain:     g.Domain(),
		Samples:    len(g.Samples()),
	}
	if g.Input() != g.Expression() {
		gd.Input = g.Input()
	}
	if err := g.Err(); err != nil {
		gd.Error = err.Error()
		gd.ErrorKind = ErrorKind(err)
	}
	return gd
}
