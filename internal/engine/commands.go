package engine

import (
	"encoding/json"
)

const (
	axisStroke       = "#505050"
	axisStrokeWidth  = 1
	curveStrokeWidth = 2
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "axis" or "curve"
	GraphID     string        `json:"graphId,omitempty"`     // For hit correlation
	Path        []PathCommand `json:"path,omitempty"`        // Device-space path data
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y].
type PathCommand []interface{}

// CompileDrawCommands generates the draw command buffer for a plot:
// the two axes first, then one curve per visible graph in insertion order.
func CompileDrawCommands(vp Viewport, graphs []*Graph) []DrawCommand {
	commands := []DrawCommand{axisCommand(vp)}
	for _, g := range graphs {
		if !g.Visible() {
			continue
		}
		path := polyline(g.segments)
		if len(path) == 0 {
			continue
		}
		commands = append(commands, DrawCommand{
			Op:          "curve",
			GraphID:     g.ID(),
			Path:        path,
			Stroke:      g.Color(),
			StrokeWidth: curveStrokeWidth,
		})
	}
	return commands
}

func axisCommand(vp Viewport) DrawCommand {
	return DrawCommand{
		Op: "axis",
		Path: []PathCommand{
			{"M", vp.CenterX, 0.0},
			{"L", vp.CenterX, vp.Height},
			{"M", 0.0, vp.CenterY},
			{"L", vp.Width, vp.CenterY},
		},
		Stroke:      axisStroke,
		StrokeWidth: axisStrokeWidth,
	}
}

// polyline joins contiguous finite segments into one path. A segment with
// a non-finite endpoint lifts the pen.
func polyline(segments []Segment) []PathCommand {
	var path []PathCommand
	penDown := false
	for _, s := range segments {
		if !s.IsFinite() {
			penDown = false
			continue
		}
		if !penDown {
			path = append(path, PathCommand{"M", s.X1, s.Y1})
			penDown = true
		}
		path = append(path, PathCommand{"L", s.X2, s.Y2})
	}
	return path
}

// DrawCommandsToJSON serializes draw commands to a JSON string.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
