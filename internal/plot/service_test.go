package plot

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/plotline/plotline/internal/engine"
	"github.com/plotline/plotline/internal/expr"
	"github.com/plotline/plotline/internal/store"
)

var testOptions = engine.PlotOptions{
	Domain:    engine.Domain{Begin: -10, End: 10, Step: 0.5},
	Viewport:  engine.Viewport{Scale: 20, CenterX: 200, CenterY: 200, Width: 400, Height: 400},
	MaxGraphs: 3,
}

func newTestService(t *testing.T) (*Service, *store.FileStore) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewService(st, testOptions), st
}

func TestCreateAndReload(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Create(ctx, "  waves ", []string{"sin(x)", "cos(", "x/2"})
	if !errors.Is(err, expr.ErrSyntax) {
		t.Fatalf("got %v, want syntax error for the bad line", err)
	}
	if doc.Name != "waves" || len(doc.Graphs) != 3 {
		t.Fatalf("got %+v", doc)
	}

	rec, err := st.Load(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []string{"sin(x)", "x/2"}, rec.Expressions)

	// A fresh service loads the plot from disk.
	fresh := NewService(st, testOptions)
	got, err := fresh.Get(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "waves" || len(got.Graphs) != 2 || got.Graphs[1].Expression != "x/2" {
		t.Errorf("reloaded %+v", got)
	}
}

func TestCreateValidatesName(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), "   ", nil); !errors.Is(err, ErrEmptyName) {
		t.Errorf("got %v", err)
	}
}

func TestSetExpressionPersistsOnlyAccepted(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Create(ctx, "p", []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	graphID := doc.Graphs[0].ID

	gd, err := svc.SetExpression(ctx, doc.ID, graphID, "sqrt(x)")
	if !errors.Is(err, expr.ErrDomain) {
		t.Fatalf("got %v, want domain error", err)
	}
	if gd.Expression != "x" || gd.Input != "sqrt(x)" || gd.State != "error" {
		t.Errorf("got %+v", gd)
	}
	rec, _ := st.Load(ctx, doc.ID)
	diff(t, []string{"x"}, rec.Expressions)

	if _, err := svc.SetExpression(ctx, doc.ID, graphID, "x^2"); err != nil {
		t.Fatal(err)
	}
	rec, _ = st.Load(ctx, doc.ID)
	diff(t, []string{"x^2"}, rec.Expressions)

	if _, err := svc.SetExpression(ctx, doc.ID, "graph_missing", "x"); !errors.Is(err, engine.ErrGraphNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestMultiLineExpressionKeepsPlotSavable(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Create(ctx, "p", []string{"x", "2*x"})
	if err != nil {
		t.Fatal(err)
	}

	gd, err := svc.SetExpression(ctx, doc.ID, doc.Graphs[0].ID, "x\n+1")
	if !errors.Is(err, expr.ErrSyntax) {
		t.Fatalf("got %v, want syntax error", err)
	}
	if gd.Expression != "x" || gd.State != "error" {
		t.Errorf("got %+v", gd)
	}

	// Later edits to the same plot still reach the store.
	if _, err := svc.SetExpression(ctx, doc.ID, doc.Graphs[1].ID, "3*x"); err != nil {
		t.Fatal(err)
	}
	rec, err := st.Load(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []string{"x", "3*x"}, rec.Expressions)
}

func TestAddAndRemoveGraph(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	doc, _ := svc.Create(ctx, "p", nil)

	gd, err := svc.AddGraph(ctx, doc.ID, "2*x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddGraph(ctx, doc.ID, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddGraph(ctx, doc.ID, "x +"); !errors.Is(err, expr.ErrSyntax) {
		t.Errorf("got %v", err)
	}
	if _, err := svc.AddGraph(ctx, doc.ID, "x"); !errors.Is(err, engine.ErrTooManyGraphs) {
		t.Errorf("got %v", err)
	}

	if err := svc.RemoveGraph(ctx, doc.ID, gd.ID); err != nil {
		t.Fatal(err)
	}
	rec, _ := st.Load(ctx, doc.ID)
	if len(rec.Expressions) != 0 {
		t.Errorf("got %v", rec.Expressions)
	}
}

func TestViewportChanges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	doc, _ := svc.Create(ctx, "p", []string{"x"})

	got, err := svc.Zoom(ctx, doc.ID, 2, 200, 200)
	if err != nil {
		t.Fatal(err)
	}
	if got.Viewport.Scale != 40 || got.Graphs[0].Domain.Step != 0.05 {
		t.Errorf("got %+v", got)
	}

	got, err = svc.Pan(ctx, doc.ID, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Viewport.CenterX != 210 {
		t.Errorf("got %+v", got.Viewport)
	}

	if _, err := svc.SetViewport(ctx, doc.ID, engine.Viewport{}); !errors.Is(err, engine.ErrInvalidViewport) {
		t.Errorf("got %v", err)
	}
}

func TestHitTest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	doc, _ := svc.Create(ctx, "p", []string{"0"})

	hit, err := svc.HitTest(ctx, doc.ID, 240, 201)
	if err != nil {
		t.Fatal(err)
	}
	if hit.GraphID != doc.Graphs[0].ID {
		t.Errorf("got %+v", hit)
	}
	if math.Abs(hit.X-2) > 1e-9 {
		t.Errorf("got x %g", hit.X)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	doc, _ := svc.Create(ctx, "p", nil)

	if err := svc.Delete(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v", err)
	}
	if err := svc.Delete(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v", err)
	}
}
