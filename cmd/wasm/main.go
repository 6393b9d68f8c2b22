//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/plotline/plotline/internal/document"
	"github.com/plotline/plotline/internal/engine"
)

var plt *engine.Plot

func main() {
	plt = newPlot(600, 400)

	plotlineEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	plotlineEngine.Set("init", js.FuncOf(initPlot))
	plotlineEngine.Set("addGraph", js.FuncOf(addGraph))
	plotlineEngine.Set("removeGraph", js.FuncOf(removeGraph))
	plotlineEngine.Set("setExpression", js.FuncOf(setExpression))
	plotlineEngine.Set("setVisible", js.FuncOf(setVisible))
	plotlineEngine.Set("setViewport", js.FuncOf(setViewport))
	plotlineEngine.Set("pan", js.FuncOf(pan))
	plotlineEngine.Set("zoom", js.FuncOf(zoom))
	plotlineEngine.Set("loadExpressions", js.FuncOf(loadExpressions))
	plotlineEngine.Set("loadSample", js.FuncOf(loadSample))

	// --- Queries (frontend ← engine) ---
	plotlineEngine.Set("render", js.FuncOf(render))
	plotlineEngine.Set("hitTest", js.FuncOf(hitTest))
	plotlineEngine.Set("toDomain", js.FuncOf(toDomain))
	plotlineEngine.Set("getExpressions", js.FuncOf(getExpressions))
	plotlineEngine.Set("getDocument", js.FuncOf(getDocument))

	js.Global().Set("plotlineEngine", plotlineEngine)
	js.Global().Set("plotlineWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// newPlot centres the origin on a pane of the given size, showing
// [-10, 10] at 30 pixels per unit.
func newPlot(width, height float64) *engine.Plot {
	return engine.NewPlot(engine.PlotOptions{
		Domain: engine.Domain{Begin: -10, End: 10, Step: 0.05},
		Viewport: engine.Viewport{
			Scale:   30,
			CenterX: width / 2,
			CenterY: height / 2,
			Width:   width,
			Height:  height,
		},
		MaxGraphs: 8,
	})
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": err.Error(),
		"kind":  document.ErrorKind(err),
	})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

// --- Command Handlers ---

func initPlot(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("pane width and height")
	}
	plt = newPlot(args[0].Float(), args[1].Float())
	return okResult()
}

func addGraph(this js.Value, args []js.Value) interface{} {
	g, err := plt.AddGraph()
	if err != nil {
		return errorResult(err)
	}
	if len(args) > 0 && args[0].Type() == js.TypeString {
		if err := g.SetExpression(args[0].String()); err != nil {
			res := errorResult(err).(js.Value)
			res.Set("id", g.ID())
			return res
		}
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": g.ID()})
}

func removeGraph(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("graph id")
	}
	if err := plt.RemoveGraph(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setExpression(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("graph id and expression")
	}
	if err := plt.SetExpression(args[0].String(), args[1].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setVisible(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("graph id and visibility")
	}
	if err := plt.SetVisible(args[0].String(), args[1].Bool()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("viewport JSON")
	}
	var vp engine.Viewport
	if err := json.Unmarshal([]byte(args[0].String()), &vp); err != nil {
		return errorResult(err)
	}
	if err := plt.SetViewport(vp); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func pan(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("dx and dy")
	}
	if err := plt.Pan(args[0].Float(), args[1].Float()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func zoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("factor and anchor")
	}
	if err := plt.Zoom(args[0].Float(), args[1].Float(), args[2].Float()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadExpressions(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("expression list")
	}
	exprs, err := document.ParseExpressions(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	plt.Clear()
	if err := plt.LoadExpressions(exprs); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSample(this js.Value, args []js.Value) interface{} {
	plt.Clear()
	if err := plt.LoadExpressions(document.SampleExpressions()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(plt.RenderJSON())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(plt.HitTest(args[0].Float(), args[1].Float(), engine.DefaultHitTolerance))
}

func toDomain(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("{}")
	}
	x, y := plt.DeviceToDomain(args[0].Float(), args[1].Float())
	return js.ValueOf(map[string]interface{}{"x": x, "y": y})
}

func getExpressions(this js.Value, args []js.Value) interface{} {
	s, err := document.FormatExpressions(plt.Expressions())
	if err != nil {
		return js.ValueOf("")
	}
	return js.ValueOf(s)
}

func getDocument(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(document.FromPlot("", "", plt))
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}
