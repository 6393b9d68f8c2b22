// Package plot serialises access to live plots and persists their
// expressions through a store.
package plot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/plotline/plotline/internal/document"
	"github.com/plotline/plotline/internal/engine"
	"github.com/plotline/plotline/internal/store"
	"github.com/plotline/plotline/internal/typeid"
)

var (
	ErrNotFound   = errors.New("plot not found")
	ErrEmptyName  = errors.New("name is required")
	ErrNameLength = errors.New("name is too long")
)

const maxNameLen = 200

// Session is one live plot. All access to the engine goes through its
// lock; the engine types themselves are not safe for concurrent use.
type Session struct {
	ID string

	mu   sync.Mutex
	name string
	plot *engine.Plot
}

// Service owns the live sessions, loading them from the store on first use.
type Service struct {
	store store.Store
	opts  engine.PlotOptions

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewService(st store.Store, opts engine.PlotOptions) *Service {
	if opts.NewID == nil {
		opts.NewID = typeid.NewGraphID
	}
	return &Service{
		store:    st,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create makes a new plot seeded with exprs. Expressions that are rejected
// still get a graph in the error state; they are reported in the returned
// error alongside the document.
func (s *Service) Create(ctx context.Context, name string, exprs []string) (*document.PlotDocument, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(name) > maxNameLen {
		return nil, ErrNameLength
	}

	sess := &Session{
		ID:   typeid.NewPlotID(),
		name: name,
		plot: engine.NewPlot(s.opts),
	}
	loadErr := sess.plot.LoadExpressions(exprs)

	if err := s.store.Save(ctx, &store.Plot{ID: sess.ID, Name: name, Expressions: sess.plot.Expressions()}); err != nil {
		return nil, fmt.Errorf("save plot: %w", err)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("plot created", "plot", sess.ID, "graphs", sess.plot.Len())
	return document.FromPlot(sess.ID, sess.name, sess.plot), loadErr
}

func (s *Service) List(ctx context.Context) ([]store.Summary, error) {
	summaries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plots: %w", err)
	}
	return summaries, nil
}

func (s *Service) Get(ctx context.Context, plotID string) (*document.PlotDocument, error) {
	var doc *document.PlotDocument
	err := s.View(ctx, plotID, func(sess *Session) error {
		doc = sess.Document()
		return nil
	})
	return doc, err
}

func (s *Service) Delete(ctx context.Context, plotID string) error {
	s.mu.Lock()
	delete(s.sessions, plotID)
	s.mu.Unlock()

	if err := s.store.Delete(ctx, plotID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete plot: %w", err)
	}
	slog.Info("plot deleted", "plot", plotID)
	return nil
}

// View runs fn with the session locked.
func (s *Service) View(ctx context.Context, plotID string, fn func(*Session) error) error {
	sess, err := s.session(ctx, plotID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// Update runs fn with the session locked and saves the plot when its
// accepted expressions changed, whatever fn returned.
func (s *Service) Update(ctx context.Context, plotID string, fn func(*Session) error) error {
	sess, err := s.session(ctx, plotID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	before := sess.plot.Expressions()
	fnErr := fn(sess)
	after := sess.plot.Expressions()
	if !slices.Equal(before, after) {
		if err := s.store.Save(ctx, &store.Plot{ID: sess.ID, Name: sess.name, Expressions: after}); err != nil {
			return errors.Join(fnErr, fmt.Errorf("save plot: %w", err))
		}
	}
	return fnErr
}

// AddGraph appends a graph and, when src is not empty, sets its expression.
// A rejected expression leaves the new graph in the error state.
func (s *Service) AddGraph(ctx context.Context, plotID, src string) (document.GraphDocument, error) {
	var gd document.GraphDocument
	err := s.Update(ctx, plotID, func(sess *Session) error {
		g, err := sess.plot.AddGraph()
		if err != nil {
			return err
		}
		if src != "" {
			err = g.SetExpression(src)
		}
		gd = document.FromGraph(g)
		return err
	})
	return gd, err
}

func (s *Service) RemoveGraph(ctx context.Context, plotID, graphID string) error {
	return s.Update(ctx, plotID, func(sess *Session) error {
		return sess.plot.RemoveGraph(graphID)
	})
}

// SetExpression returns the graph as it stands afterwards, so on rejection
// the caller still sees the retained curve.
func (s *Service) SetExpression(ctx context.Context, plotID, graphID, src string) (document.GraphDocument, error) {
	var gd document.GraphDocument
	err := s.Update(ctx, plotID, func(sess *Session) error {
		g, ok := sess.plot.Graph(graphID)
		if !ok {
			return fmt.Errorf("%w: %s", engine.ErrGraphNotFound, graphID)
		}
		err := g.SetExpression(src)
		gd = document.FromGraph(g)
		return err
	})
	return gd, err
}

func (s *Service) SetVisible(ctx context.Context, plotID, graphID string, visible bool) error {
	return s.View(ctx, plotID, func(sess *Session) error {
		return sess.plot.SetVisible(graphID, visible)
	})
}

func (s *Service) SetViewport(ctx context.Context, plotID string, vp engine.Viewport) (*document.PlotDocument, error) {
	return s.viewportChange(ctx, plotID, func(p *engine.Plot) error { return p.SetViewport(vp) })
}

func (s *Service) Pan(ctx context.Context, plotID string, dx, dy float64) (*document.PlotDocument, error) {
	return s.viewportChange(ctx, plotID, func(p *engine.Plot) error { return p.Pan(dx, dy) })
}

func (s *Service) Zoom(ctx context.Context, plotID string, factor, anchorX, anchorY float64) (*document.PlotDocument, error) {
	return s.viewportChange(ctx, plotID, func(p *engine.Plot) error { return p.Zoom(factor, anchorX, anchorY) })
}

func (s *Service) viewportChange(ctx context.Context, plotID string, fn func(*engine.Plot) error) (*document.PlotDocument, error) {
	var doc *document.PlotDocument
	err := s.View(ctx, plotID, func(sess *Session) error {
		err := fn(sess.plot)
		doc = sess.Document()
		return err
	})
	return doc, err
}

func (s *Service) Render(ctx context.Context, plotID string) ([]engine.DrawCommand, error) {
	var cmds []engine.DrawCommand
	err := s.View(ctx, plotID, func(sess *Session) error {
		cmds = sess.plot.Render()
		return nil
	})
	return cmds, err
}

// Hit is the result of a pick at a device point.
type Hit struct {
	GraphID string  `json:"graphId,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

func (s *Service) HitTest(ctx context.Context, plotID string, px, py float64) (Hit, error) {
	var hit Hit
	err := s.View(ctx, plotID, func(sess *Session) error {
		hit.GraphID = sess.plot.HitTest(px, py, engine.DefaultHitTolerance)
		hit.X, hit.Y = sess.plot.DeviceToDomain(px, py)
		return nil
	})
	return hit, err
}

// Document snapshots the session. The caller must hold the session lock,
// which View and Update do.
func (sess *Session) Document() *document.PlotDocument {
	return document.FromPlot(sess.ID, sess.name, sess.plot)
}

// Name returns the plot name. Same locking rule as Document.
func (sess *Session) Name() string { return sess.name }

// Plot returns the engine plot. Same locking rule as Document.
func (sess *Session) Plot() *engine.Plot { return sess.plot }

func (s *Service) session(ctx context.Context, plotID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[plotID]; ok {
		return sess, nil
	}

	rec, err := s.store.Load(ctx, plotID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load plot: %w", err)
	}

	sess := &Session{ID: rec.ID, name: rec.Name, plot: engine.NewPlot(s.opts)}
	if err := sess.plot.LoadExpressions(rec.Expressions); err != nil {
		slog.Warn("plot loaded with rejected expressions", "plot", plotID, "error", err)
	}
	s.sessions[plotID] = sess
	return sess, nil
}
