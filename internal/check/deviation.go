package check

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Result summarizes one check over a set of samples.
type Result struct {
	Name       string  `json:"name"`
	Samples    int     `json:"samples"`
	Violations int     `json:"violations"`
	MaxErr     float64 `json:"max_err"`
}

func (r Result) Passed() bool {
	return r.Samples > 0 && r.Violations == 0
}

// Deviation accumulates the worst disagreement between matrix pairs. A
// sample violates when any entry is outside tol, absolute or relative.
type Deviation struct {
	name       string
	tol        float64
	violations int
	samples    int
	maxErr     float64
}

func NewDeviation(name string, tol float64) *Deviation {
	return &Deviation{
		name: name,
		tol:  tol,
	}
}

func (d *Deviation) Name() string {
	return d.name
}

func (d *Deviation) Observe(got, want mat.Matrix) {
	d.samples++
	r, c := want.Dims()
	if gr, gc := got.Dims(); gr != r || gc != c {
		d.violations++
		d.maxErr = math.Inf(1)
		return
	}
	violated := false
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g, w := got.At(i, j), want.At(i, j)
			if diff := math.Abs(g - w); diff > d.maxErr || math.IsNaN(diff) {
				d.maxErr = diff
			}
			if !floats.EqualWithinAbsOrRel(g, w, d.tol, d.tol) {
				violated = true
			}
		}
	}
	if violated {
		d.violations++
	}
}

func (d *Deviation) Result() Result {
	return Result{
		Name:       d.name,
		Samples:    d.samples,
		Violations: d.violations,
		MaxErr:     d.maxErr,
	}
}

func (d *Deviation) Reset() {
	d.violations = 0
	d.samples = 0
	d.maxErr = 0
}
