package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// SweepPlot plots ys over an evenly spaced sweep from lo to hi.
func SweepPlot(ys []float64, caption string, lo, hi float64) string {
	if len(ys) == 0 {
		return ""
	}
	graph := asciigraph.Plot(ys,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s over [%g, %g]", caption, lo, hi)),
	)
	return graph
}

// Sweep returns n evenly spaced values from lo to hi inclusive.
func Sweep(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
