package rocket

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/expr"
	"go.uber.org/zap"
)

// Matrix names one of the derived matrices.
type Matrix string

const (
	MatrixF Matrix = "f"
	MatrixA Matrix = "A"
	MatrixB Matrix = "B"
)

// Matrices lists the derived matrices in emission order.
var Matrices = []Matrix{MatrixF, MatrixA, MatrixB}

func ParseMatrix(name string) (Matrix, error) {
	switch Matrix(name) {
	case MatrixF, MatrixA, MatrixB:
		return Matrix(name), nil
	}
	return "", fmt.Errorf("unknown matrix %q (want f, A or B)", name)
}

// Shape returns the row and column count of m.
func (m Matrix) Shape() (rows, cols int) {
	switch m {
	case MatrixA:
		return dynamo.StateDim, dynamo.StateDim
	case MatrixB:
		return dynamo.StateDim, dynamo.ControlDim
	}
	return dynamo.StateDim, 1
}

// Dynamics holds the derived matrices of one binding.
type Dynamics struct {
	binding Binding
	consts  Constants

	x, u []expr.Expr
	s    expr.Expr

	f    []expr.Expr
	a, b [][]expr.Expr

	log *zap.Logger
}

// New derives f, A and B. This is the one expensive step and runs
// synchronously; ctx is checked between the assembly and linearization.
func New(ctx context.Context, binding Binding, log *zap.Logger) (*Dynamics, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	consts, err := binding.constants(log)
	if err != nil {
		return nil, err
	}

	d := &Dynamics{
		binding: binding,
		consts:  consts,
		x:       StateSymbols(),
		u:       ControlSymbols(),
		s:       ScaleSymbol(),
		log:     log,
	}

	d.f, err = Assemble(d.x, d.u, consts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.a, d.b, err = Linearize(d.f, d.x, d.u, d.s)
	if err != nil {
		return nil, err
	}

	log.Info("dynamics derived",
		zap.Bool("symbolic", binding.symbolic()),
		zap.Int("nonzero_A", countNonZero(d.a)),
		zap.Int("nonzero_B", countNonZero(d.b)),
		zap.Duration("took", time.Since(start)))
	return d, nil
}

// Symbolic reports whether constants are free symbols, i.e. whether the
// matrices can be compiled.
func (d *Dynamics) Symbolic() bool { return d.binding.symbolic() }

// Entries returns a copy of the rows of m; f is returned as a 14×1 column.
func (d *Dynamics) Entries(m Matrix) [][]expr.Expr {
	var src [][]expr.Expr
	switch m {
	case MatrixA:
		src = d.a
	case MatrixB:
		src = d.b
	default:
		src = make([][]expr.Expr, len(d.f))
		for i, e := range d.f {
			src[i] = []expr.Expr{e}
		}
		return src
	}
	out := make([][]expr.Expr, len(src))
	for i, row := range src {
		out[i] = append([]expr.Expr(nil), row...)
	}
	return out
}

// ZeroMask marks the entries of m that are the literal zero.
func (d *Dynamics) ZeroMask(m Matrix) [][]bool {
	entries := d.Entries(m)
	mask := make([][]bool, len(entries))
	for i, row := range entries {
		mask[i] = make([]bool, len(row))
		for j, e := range row {
			mask[i][j] = expr.IsZero(e)
		}
	}
	return mask
}

func countNonZero(m [][]expr.Expr) int {
	n := 0
	for _, row := range m {
		for _, e := range row {
			if !expr.IsZero(e) {
				n++
			}
		}
	}
	return n
}
