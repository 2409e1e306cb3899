package rocket

import (
	"fmt"
	"math"

	"github.com/san-kum/dyngen/internal/config"
	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/expr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Evaluate substitutes x, u and s positionally into m. On a symbolic
// instance this fails with an unresolved-symbol error; use EvaluateWith.
func (d *Dynamics) Evaluate(m Matrix, x dynamo.State, u dynamo.Control, s float64) (*mat.Dense, error) {
	return d.evaluate(m, x, u, s, nil)
}

// EvaluateWith is Evaluate with constant values bound as well. A symbolic
// instance divides by each diagonal inertia element, so a near-zero one is
// logged as degenerate.
func (d *Dynamics) EvaluateWith(m Matrix, x dynamo.State, u dynamo.Control, s float64, c config.Constants) (*mat.Dense, error) {
	if d.Symbolic() {
		d.warnDegenerateDiagonal(c.J)
	}
	return d.evaluate(m, x, u, s, &c)
}

func (d *Dynamics) warnDegenerateDiagonal(j [3][3]float64) {
	scale := math.Max(math.Abs(j[0][0]), math.Max(math.Abs(j[1][1]), math.Abs(j[2][2])))
	for i := 0; i < 3; i++ {
		if math.Abs(j[i][i]) <= pinvRcond*scale {
			d.log.Warn("degenerate inertia tensor, diagonal element near zero",
				zap.Int("axis", i),
				zap.Float64("value", j[i][i]))
		}
	}
}

func (d *Dynamics) evaluate(m Matrix, x dynamo.State, u dynamo.Control, s float64, c *config.Constants) (*mat.Dense, error) {
	if err := x.CheckDim(); err != nil {
		return nil, err
	}
	if err := u.CheckDim(); err != nil {
		return nil, err
	}

	env := make(expr.Env, dynamo.StateDim+dynamo.ControlDim+1)
	for i, name := range StateNames {
		env[name] = x[i]
	}
	for i, name := range ControlNames {
		env[name] = u[i]
	}
	env[ScaleName] = s
	if c != nil {
		bindConstants(env, *c)
	}

	entries := d.Entries(m)
	rows, cols := m.Shape()
	out := mat.NewDense(rows, cols, nil)
	for i, row := range entries {
		for j, e := range row {
			v, err := expr.Eval(e, env)
			if err != nil {
				return nil, fmt.Errorf("evaluate %s[%d,%d]: %w", m, i, j, err)
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

func bindConstants(env expr.Env, c config.Constants) {
	env[AlphaName] = c.Alpha
	for i := 0; i < 3; i++ {
		env[RTBNames[i]] = c.RTB[i]
		env[GravityNames[i]] = c.G[i]
		for j := 0; j < 3; j++ {
			env[InertiaSymbol(i, j)] = c.J[i][j]
			env[expr.Idx(InertiaName, i, j).String()] = c.J[i][j]
		}
	}
}
