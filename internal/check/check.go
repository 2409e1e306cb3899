package check

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dyngen/internal/codegen"
	"github.com/san-kum/dyngen/internal/config"
	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/loader"
	"github.com/san-kum/dyngen/internal/rocket"
)

// Tolerances used by the command line checks.
const (
	FiniteDifferenceTol = 1e-5
	RoundTripTol        = 1e-9
)

// RandomSample draws a physically plausible point: positive mass, unit
// quaternion, nonzero thrust. The scale s is passed through.
func RandomSample(rng *rand.Rand, s float64) dynamo.Sample {
	x := make(dynamo.State, dynamo.StateDim)
	x[rocket.IdxMass] = 0.5 + rng.Float64()
	for i := rocket.IdxPos; i < rocket.IdxQuat; i++ {
		x[i] = 2*rng.Float64() - 1
	}
	var norm float64
	for i := rocket.IdxQuat; i < rocket.IdxOmega; i++ {
		x[i] = rng.NormFloat64()
		norm += x[i] * x[i]
	}
	norm = math.Sqrt(norm)
	for i := rocket.IdxQuat; i < rocket.IdxOmega; i++ {
		x[i] /= norm
	}
	for i := rocket.IdxOmega; i < dynamo.StateDim; i++ {
		x[i] = 2*rng.Float64() - 1
	}
	u := make(dynamo.Control, dynamo.ControlDim)
	for i := range u {
		u[i] = 0.1 + rng.Float64()
	}
	return dynamo.Sample{X: x, U: u, S: s}
}

// Samples draws n reproducible samples from seed.
func Samples(n int, seed int64, s float64) []dynamo.Sample {
	rng := rand.New(rand.NewSource(seed))
	out := make([]dynamo.Sample, n)
	for i := range out {
		out[i] = RandomSample(rng, s)
	}
	return out
}

type evalFunc func(m rocket.Matrix, x dynamo.State, u dynamo.Control, s float64) (*mat.Dense, error)

// evaluator evaluates a Dynamics whatever its binding; c is ignored for
// numerically bound instances.
func evaluator(d *rocket.Dynamics, c config.Constants) evalFunc {
	if d.Symbolic() {
		return func(m rocket.Matrix, x dynamo.State, u dynamo.Control, s float64) (*mat.Dense, error) {
			return d.EvaluateWith(m, x, u, s, c)
		}
	}
	return d.Evaluate
}

// FiniteDifference compares A and B with central differences of f.
// Samples are evaluated concurrently; the derived matrices are read-only.
func FiniteDifference(d *rocket.Dynamics, c config.Constants, samples []dynamo.Sample, tol float64) (Result, Result, error) {
	for _, p := range samples {
		if err := p.CheckDim(); err != nil {
			return Result{}, Result{}, err
		}
	}

	eval := evaluator(d, c)
	pairs := make([]jacobianPair, len(samples))
	dynamo.ParallelFor(len(samples), 1, func(start, end int) {
		for n := start; n < end; n++ {
			pairs[n] = jacobians(eval, samples[n])
			if pairs[n].err != nil {
				pairs[n].err = fmt.Errorf("sample %d: %w", n, pairs[n].err)
			}
		}
	})

	devA := NewDeviation("finite-difference A", tol)
	devB := NewDeviation("finite-difference B", tol)
	for _, p := range pairs {
		if p.err != nil {
			return Result{}, Result{}, p.err
		}
		devA.Observe(p.a, p.ja)
		devB.Observe(p.b, p.jb)
	}
	return devA.Result(), devB.Result(), nil
}

// jacobianPair holds the derived and finite-difference Jacobians of one
// sample, both scaled by s.
type jacobianPair struct {
	a, b, ja, jb *mat.Dense
	err          error
}

func jacobians(eval evalFunc, p dynamo.Sample) jacobianPair {
	a, err := eval(rocket.MatrixA, p.X, p.U, p.S)
	if err != nil {
		return jacobianPair{err: err}
	}
	b, err := eval(rocket.MatrixB, p.X, p.U, p.S)
	if err != nil {
		return jacobianPair{err: err}
	}

	var ferr error
	f := func(y []float64, x dynamo.State, u dynamo.Control) {
		v, err := eval(rocket.MatrixF, x, u, p.S)
		if err != nil {
			ferr = err
			return
		}
		copy(y, v.RawMatrix().Data)
	}

	settings := &fd.JacobianSettings{Formula: fd.Central}
	ja := mat.NewDense(dynamo.StateDim, dynamo.StateDim, nil)
	jb := mat.NewDense(dynamo.StateDim, dynamo.ControlDim, nil)
	fd.Jacobian(ja, func(y, x []float64) { f(y, x, p.U) }, p.X, settings)
	fd.Jacobian(jb, func(y, u []float64) { f(y, p.X, u) }, p.U, settings)
	if ferr != nil {
		return jacobianPair{err: ferr}
	}
	ja.Scale(p.S, ja)
	jb.Scale(p.S, jb)
	return jacobianPair{a: a, b: b, ja: ja, jb: jb}
}

// RoundTrip compares the loaded module with direct evaluation, one result
// per matrix in emission order.
func RoundTrip(d *rocket.Dynamics, ev *loader.Evaluator, c config.Constants, samples []dynamo.Sample, tol float64) ([]Result, error) {
	eval := evaluator(d, c)
	devs := make(map[rocket.Matrix]*Deviation, len(rocket.Matrices))
	for _, m := range rocket.Matrices {
		devs[m] = NewDeviation("round-trip "+string(m), tol)
	}

	for _, p := range samples {
		if err := p.CheckDim(); err != nil {
			return nil, err
		}
		for _, m := range rocket.Matrices {
			want, err := eval(m, p.X, p.U, p.S)
			if err != nil {
				return nil, err
			}
			var got *mat.Dense
			switch m {
			case rocket.MatrixF:
				got = mat.NewDense(dynamo.StateDim, 1, ev.F(p.X, p.U))
			case rocket.MatrixA:
				got = Dense(ev.A(p.X, p.U, p.S))
			case rocket.MatrixB:
				got = Dense(ev.B(p.X, p.U, p.S))
			}
			devs[m].Observe(got, want)
		}
	}

	out := make([]Result, 0, len(rocket.Matrices))
	for _, m := range rocket.Matrices {
		out = append(out, devs[m].Result())
	}
	return out, nil
}

// Sparsity checks the generator's assignment mask against the derived
// literal-zero mask. A sample is one entry.
func Sparsity(d *rocket.Dynamics, g *codegen.Generator) Result {
	res := Result{Name: "sparsity"}
	for _, m := range rocket.Matrices {
		assigned := g.Sparsity(m)
		zero := d.ZeroMask(m)
		for i := range zero {
			for j := range zero[i] {
				res.Samples++
				if assigned[i][j] == zero[i][j] {
					res.Violations++
				}
			}
		}
	}
	return res
}

// Dense copies row slices into a matrix.
func Dense(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		out.SetRow(i, row)
	}
	return out
}
