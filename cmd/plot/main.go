// Command plot draws expressions of x in the terminal.
//
//	plot -e 'sin(x)' -e 'x^2/10 - 3' -begin -6 -end 6
//	plot -f plots/waves.txt
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/plotline/plotline/internal/document"
	"github.com/plotline/plotline/internal/engine"
)

type exprList []string

func (l *exprList) String() string { return strings.Join(*l, "; ") }

func (l *exprList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Cyan,
	asciigraph.Magenta,
}

func main() {
	var exprs exprList
	flag.Var(&exprs, "e", "expression to plot (repeatable)")
	file := flag.String("f", "", "file with one expression per line")
	begin := flag.Float64("begin", -10, "first x sample")
	end := flag.Float64("end", 10, "last x sample")
	step := flag.Float64("step", 0.25, "distance between samples")
	height := flag.Int("height", 20, "chart height in rows")
	width := flag.Int("width", 0, "chart width in columns, 0 for one column per sample")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			slog.Error("open expression file", "error", err)
			os.Exit(1)
		}
		fromFile, err := document.ReadExpressions(f)
		f.Close()
		if err != nil {
			slog.Error("read expression file", "path", *file, "error", err)
			os.Exit(1)
		}
		exprs = append(exprs, fromFile...)
	}
	if len(exprs) == 0 {
		exprs = document.SampleExpressions()
	}

	domain := engine.Domain{Begin: *begin, End: *end, Step: *step}
	if err := domain.Validate(); err != nil {
		slog.Error("bad domain", "error", err)
		os.Exit(2)
	}
	if n := domain.SampleCount(); n > engine.MaxSamples {
		slog.Error("bad domain", "error", engine.ErrTooManySamples, "samples", n)
		os.Exit(2)
	}

	var (
		series  [][]float64
		legends []string
		colors  []asciigraph.AnsiColor
	)
	for i, src := range exprs {
		g := engine.NewGraph(fmt.Sprintf("graph_%d", i+1), engine.GraphOptions{Domain: domain})
		if err := g.SetExpression(src); err != nil {
			slog.Warn("skipping expression", "expression", src, "kind", document.ErrorKind(err), "error", err)
			continue
		}
		ys, ok := gaps(g.Samples())
		if !ok {
			slog.Warn("skipping expression", "expression", src, "error", "no finite samples")
			continue
		}
		series = append(series, ys)
		legends = append(legends, src)
		colors = append(colors, seriesColors[len(colors)%len(seriesColors)])
	}
	if len(series) == 0 {
		slog.Error("nothing to plot")
		os.Exit(1)
	}

	opts := []asciigraph.Option{
		asciigraph.Height(*height),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(fmt.Sprintf("x in [%g, %g], step %g", *begin, *end, *step)),
	}
	if *width > 0 {
		opts = append(opts, asciigraph.Width(*width))
	}
	fmt.Println(asciigraph.PlotMany(series, opts...))
}

// gaps replaces infinities with NaN, which the chart leaves blank. It
// reports false when nothing finite is left.
func gaps(samples []float64) ([]float64, bool) {
	out := make([]float64, len(samples))
	finite := false
	for i, y := range samples {
		if math.IsInf(y, 0) {
			y = math.NaN()
		}
		if !math.IsNaN(y) {
			finite = true
		}
		out[i] = y
	}
	return out, finite
}
