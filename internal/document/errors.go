package document

import (
	"errors"

	"github.com/plotline/plotline/internal/engine"
	"github.com/plotline/plotline/internal/expr"
)

// ErrorKind names the category of an engine error for clients. It returns
// "" for errors that did not come from the core.
func ErrorKind(err error) string {
	if k := expr.KindOf(err); k != 0 {
		return k.String()
	}
	switch {
	case errors.Is(err, engine.ErrTooManySamples):
		return "too_many_samples"
	case errors.Is(err, engine.ErrInvalidViewport):
		return "invalid_viewport"
	case errors.Is(err, engine.ErrTooManyGraphs):
		return "too_many_graphs"
	}
	return ""
}
