package collab

import (
	"errors"
	"fmt"
	"time"

	"github.com/plotline/plotline/internal/engine"
)

var ErrInvalidOperation = errors.New("invalid operation")

// ApplyOperation applies op to p. For graph.add the new graph id is written
// back into op so it can be acknowledged and broadcast.
//
// An expression that the engine rejects still changes the plot: the graph
// records the failed input. The error is returned either way.
func ApplyOperation(p *engine.Plot, op *Operation) error {
	switch op.Type {
	case OpGraphAdd:
		g, err := p.AddGraph()
		if err != nil {
			return err
		}
		op.GraphID = g.ID()
		if op.Expression != "" {
			return g.SetExpression(op.Expression)
		}
		return nil
	case OpGraphRemove:
		return p.RemoveGraph(op.GraphID)
	case OpGraphExpression:
		return p.SetExpression(op.GraphID, op.Expression)
	case OpGraphVisibility:
		if op.Visible == nil {
			return fmt.Errorf("%w: visibility without visible", ErrInvalidOperation)
		}
		return p.SetVisible(op.GraphID, *op.Visible)
	case OpViewportSet:
		if op.Viewport == nil {
			return fmt.Errorf("%w: viewport.set without viewport", ErrInvalidOperation)
		}
		return p.SetViewport(*op.Viewport)
	case OpViewportPan:
		return p.Pan(op.DX, op.DY)
	case OpViewportZoom:
		return p.Zoom(op.Factor, op.AnchorX, op.AnchorY)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidOperation, op.Type)
	}
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
