package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/plotline/plotline/internal/engine"
)

// WriteCSV writes a graph,x,y row for every sample of every graph that has
// an accepted expression. Non-finite values are written as +Inf, -Inf
// or NaN.
func WriteCSV(w io.Writer, graphs []*engine.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"graph", "x", "y"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, g := range graphs {
		if g.Expression() == "" {
			continue
		}
		d := g.Domain()
		for i, y := range g.Samples() {
			row := []string{g.ID(), formatFloat(d.At(i)), formatFloat(y)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}
