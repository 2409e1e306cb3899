package rocket

import (
	"math"

	"github.com/san-kum/dyngen/internal/config"
	"github.com/san-kum/dyngen/internal/expr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Binding selects how the constants enter the derivation. It is either
// SymbolicDerivation or NumericConfiguration.
type Binding interface {
	constants(log *zap.Logger) (Constants, error)
	symbolic() bool
}

// SymbolicDerivation keeps every constant a free symbol; code generation is
// available.
type SymbolicDerivation struct{}

// NumericConfiguration folds the given values into the matrices; they can
// be evaluated but not compiled.
type NumericConfiguration struct {
	Constants config.Constants
}

// Constants are the constant terms the assembler reads. JPinv is the
// pseudo-inverse of J.
type Constants struct {
	Alpha expr.Expr
	RTB   [3]expr.Expr
	J     [3][3]expr.Expr
	JPinv [3][3]expr.Expr
	G     [3]expr.Expr
}

func (SymbolicDerivation) symbolic() bool { return true }

func (SymbolicDerivation) constants(*zap.Logger) (Constants, error) {
	var c Constants
	c.Alpha = expr.S(AlphaName)
	for i := 0; i < 3; i++ {
		c.RTB[i] = expr.S(RTBNames[i])
		c.G[i] = expr.S(GravityNames[i])
		for j := 0; j < 3; j++ {
			c.J[i][j] = expr.N(0)
			c.JPinv[i][j] = expr.N(0)
		}
		// the diagonal pseudo-inverse, assuming a non-zero diagonal
		jii := expr.S(InertiaSymbol(i, i))
		c.J[i][i] = jii
		c.JPinv[i][i] = expr.PowOf(jii, -1)
	}
	return c, nil
}

func (NumericConfiguration) symbolic() bool { return false }

func (n NumericConfiguration) constants(log *zap.Logger) (Constants, error) {
	var c Constants
	if err := n.Constants.Validate(); err != nil {
		return c, err
	}

	pinv, cond, rank := PseudoInverse(n.Constants.J)
	if rank < 3 || cond > maxInertiaCond {
		log.Warn("degenerate inertia tensor, solving with pseudo-inverse",
			zap.Int("rank", rank),
			zap.Float64("cond", cond))
	}

	c.Alpha = expr.NFloat(n.Constants.Alpha)
	for i := 0; i < 3; i++ {
		c.RTB[i] = expr.NFloat(n.Constants.RTB[i])
		c.G[i] = expr.NFloat(n.Constants.G[i])
		for j := 0; j < 3; j++ {
			c.J[i][j] = expr.NFloat(n.Constants.J[i][j])
			c.JPinv[i][j] = expr.NFloat(pinv[i][j])
		}
	}
	return c, nil
}

const (
	maxInertiaCond = 1e12
	pinvRcond      = 1e-12
)

// PseudoInverse returns the Moore-Penrose inverse of j via SVD, its
// condition number and its numerical rank. Singular values below
// pinvRcond·σmax are treated as zero.
func PseudoInverse(j [3][3]float64) (pinv [3][3]float64, cond float64, rank int) {
	a := mat.NewDense(3, 3, []float64{
		j[0][0], j[0][1], j[0][2],
		j[1][0], j[1][1], j[1][2],
		j[2][0], j[2][1], j[2][2],
	})

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return pinv, math.Inf(1), 0
	}
	values := svd.Values(nil)
	if values[0] == 0 {
		return pinv, math.Inf(1), 0
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	tol := pinvRcond * values[0]
	inv := make([]float64, len(values))
	for i, sv := range values {
		if sv > tol {
			inv[i] = 1 / sv
			rank++
		}
	}

	var vs, out mat.Dense
	vs.Mul(&v, mat.NewDiagDense(3, inv))
	out.Mul(&vs, u.T())
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			pinv[r][c] = out.At(r, c)
		}
	}

	cond = math.Inf(1)
	if rank == 3 {
		cond = values[0] / values[2]
	}
	return pinv, cond, rank
}
