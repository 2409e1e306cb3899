package rocket

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/dyngen/internal/config"
	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

var (
	symbolicDyn *Dynamics
	numericDyn  *Dynamics
)

func derived(t *testing.T) (*Dynamics, *Dynamics) {
	t.Helper()
	if symbolicDyn == nil {
		d, err := New(context.Background(), SymbolicDerivation{}, zap.NewNop())
		require.NoError(t, err)
		symbolicDyn = d
	}
	if numericDyn == nil {
		d, err := New(context.Background(), NumericConfiguration{Constants: config.Presets["default"].Constants}, zap.NewNop())
		require.NoError(t, err)
		numericDyn = d
	}
	return symbolicDyn, numericDyn
}

func sample(rng *rand.Rand) (dynamo.State, dynamo.Control, float64) {
	x := make(dynamo.State, dynamo.StateDim)
	x[IdxMass] = 0.5 + rng.Float64()
	for i := 1; i < IdxQuat; i++ {
		x[i] = 2*rng.Float64() - 1
	}
	var norm float64
	for i := IdxQuat; i < IdxOmega; i++ {
		x[i] = rng.NormFloat64()
		norm += x[i] * x[i]
	}
	for i := IdxQuat; i < IdxOmega; i++ {
		x[i] /= math.Sqrt(norm)
	}
	for i := IdxOmega; i < dynamo.StateDim; i++ {
		x[i] = 2*rng.Float64() - 1
	}
	u := dynamo.Control{0.1 + rng.Float64(), 0.1 + rng.Float64(), 0.1 + rng.Float64()}
	return x, u, 0.5 + rng.Float64()
}

func TestConcreteScenario(t *testing.T) {
	sym, num := derived(t)
	c := config.Presets["default"].Constants

	x := dynamo.HoverState()
	u := dynamo.Control{0, 0, 0}
	want := mat.NewDense(dynamo.StateDim, 1, []float64{0, 0, 0, 0, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	f, err := num.Evaluate(MatrixF, x, u, 1)
	require.NoError(t, err)
	assert.True(t, mat.Equal(f, want), "numeric f:\n%v", mat.Formatted(f))

	f, err = sym.EvaluateWith(MatrixF, x, u, 1, c)
	require.NoError(t, err)
	assert.True(t, mat.Equal(f, want), "symbolic f:\n%v", mat.Formatted(f))
}

func TestZeroInputReduction(t *testing.T) {
	_, num := derived(t)
	rng := rand.New(rand.NewSource(3))
	g := config.Presets["default"].Constants.G

	for n := 0; n < 10; n++ {
		x, _, _ := sample(rng)
		for i := IdxOmega; i < dynamo.StateDim; i++ {
			x[i] = 0
		}
		f, err := num.Evaluate(MatrixF, x, dynamo.Control{0, 0, 0}, 1)
		require.NoError(t, err)

		assert.Zero(t, f.At(IdxMass, 0))
		for i := 0; i < 3; i++ {
			assert.Equal(t, x[IdxVel+i], f.At(IdxPos+i, 0))
			assert.Equal(t, g[i], f.At(IdxVel+i, 0))
			assert.Zero(t, f.At(IdxOmega+i, 0))
		}
		for i := IdxQuat; i < IdxOmega; i++ {
			assert.Zero(t, f.At(i, 0))
		}
	}
}

func TestJacobiansMatchFiniteDifference(t *testing.T) {
	sym, _ := derived(t)
	c := config.Presets["offset"].Constants
	rng := rand.New(rand.NewSource(5))

	for n := 0; n < 5; n++ {
		x, u, s := sample(rng)

		a, err := sym.EvaluateWith(MatrixA, x, u, s, c)
		require.NoError(t, err)
		b, err := sym.EvaluateWith(MatrixB, x, u, s, c)
		require.NoError(t, err)

		fOf := func(x dynamo.State, u dynamo.Control) []float64 {
			f, err := sym.EvaluateWith(MatrixF, x, u, s, c)
			require.NoError(t, err)
			return f.RawMatrix().Data
		}

		ja := mat.NewDense(dynamo.StateDim, dynamo.StateDim, nil)
		jb := mat.NewDense(dynamo.StateDim, dynamo.ControlDim, nil)
		settings := &fd.JacobianSettings{Formula: fd.Central}
		fd.Jacobian(ja, func(y, xs []float64) { copy(y, fOf(xs, u)) }, x, settings)
		fd.Jacobian(jb, func(y, us []float64) { copy(y, fOf(x, us)) }, u, settings)
		ja.Scale(s, ja)
		jb.Scale(s, jb)

		assert.True(t, mat.EqualApprox(a, ja, 1e-5), "A mismatch at sample %d", n)
		assert.True(t, mat.EqualApprox(b, jb, 1e-5), "B mismatch at sample %d", n)
	}
}

func TestEvaluateErrors(t *testing.T) {
	sym, num := derived(t)
	x := dynamo.HoverState()
	u := dynamo.Control{1, 0, 0}

	_, err := sym.Evaluate(MatrixA, x, u, 1)
	assert.ErrorIs(t, err, dynamo.ErrUnresolvedSymbol)

	_, err = num.Evaluate(MatrixA, x[:13], u, 1)
	var de *dynamo.DimensionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "state", de.Component)

	_, err = num.Evaluate(MatrixB, x, dynamo.Control{1}, 1)
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestAssembleDimensionError(t *testing.T) {
	c, err := SymbolicDerivation{}.constants(zap.NewNop())
	require.NoError(t, err)

	_, err = Assemble(StateSymbols()[:12], ControlSymbols(), c)
	assert.True(t, errors.Is(err, dynamo.ErrDimensionMismatch))

	_, err = Assemble(StateSymbols(), ControlSymbols()[:2], c)
	assert.True(t, errors.Is(err, dynamo.ErrDimensionMismatch))
}

func TestStructure(t *testing.T) {
	sym, _ := derived(t)
	f := sym.Entries(MatrixF)
	a := sym.Entries(MatrixA)
	b := sym.Entries(MatrixB)

	require.Len(t, f, dynamo.StateDim)
	require.Len(t, a[0], dynamo.StateDim)
	require.Len(t, b[0], dynamo.ControlDim)

	assert.Equal(t, "v0", f[IdxPos][0].String())
	assert.Equal(t, "s", a[IdxPos][IdxVel].String())
	assert.True(t, expr.IsZero(a[IdxPos][IdxPos]))
	assert.True(t, expr.IsZero(b[IdxPos][0]))

	// mass rate depends only on u
	for j := range a[IdxMass] {
		assert.True(t, expr.IsZero(a[IdxMass][j]), "A[0,%d] = %s", j, a[IdxMass][j])
	}

	assert.Contains(t, expr.FreeSymbols(f[IdxOmega][0]), InertiaSymbol(0, 0))
	assert.NotContains(t, expr.FreeSymbols(f[IdxOmega][0]), InertiaSymbol(0, 1))

	mask := sym.ZeroMask(MatrixB)
	assert.True(t, mask[IdxPos][1])
	assert.False(t, mask[IdxMass][0])
}

func TestDegenerateInertiaWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d, err := New(context.Background(), NumericConfiguration{Constants: config.Presets["degenerate"].Constants}, zap.New(core))
	require.NoError(t, err)
	assert.False(t, d.Symbolic())
	assert.Equal(t, 1, logs.FilterMessageSnippet("degenerate inertia").Len())

	// the singular axis silently gets zero angular acceleration
	f, err := d.Evaluate(MatrixF, dynamo.HoverState(), dynamo.Control{0.1, 0.2, 0.3}, 1)
	require.NoError(t, err)
	assert.Zero(t, f.At(IdxOmega, 0))
}

func TestSymbolicDegenerateInertiaWarns(t *testing.T) {
	sym, _ := derived(t)
	core, logs := observer.New(zapcore.WarnLevel)
	d := *sym
	d.log = zap.New(core)

	_, err := d.EvaluateWith(MatrixF, dynamo.HoverState(), dynamo.Control{0.1, 0.2, 0.3}, 1, config.Presets["default"].Constants)
	require.NoError(t, err)
	assert.Zero(t, logs.Len())

	_, err = d.EvaluateWith(MatrixF, dynamo.HoverState(), dynamo.Control{0.1, 0.2, 0.3}, 1, config.Presets["degenerate"].Constants)
	require.NoError(t, err)
	warned := logs.FilterMessageSnippet("degenerate inertia").All()
	require.Len(t, warned, 1)
	assert.Equal(t, int64(0), warned[0].ContextMap()["axis"])
}

func TestNumericBindingValidates(t *testing.T) {
	c := config.Presets["default"].Constants
	c.Alpha = math.NaN()
	_, err := New(context.Background(), NumericConfiguration{Constants: c}, nil)
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
}

func TestPseudoInverse(t *testing.T) {
	pinv, cond, rank := PseudoInverse([3][3]float64{{2, 0, 0}, {0, 4, 0}, {0, 0, 0}})
	assert.Equal(t, 2, rank)
	assert.True(t, math.IsInf(cond, 1))
	assert.InDelta(t, 0.5, pinv[0][0], 1e-12)
	assert.InDelta(t, 0.25, pinv[1][1], 1e-12)
	assert.InDelta(t, 0, pinv[2][2], 1e-12)

	pinv, cond, rank = PseudoInverse([3][3]float64{{0.01, 0, 0}, {0, 0.01, 0}, {0, 0, 0.01}})
	assert.Equal(t, 3, rank)
	assert.InDelta(t, 1, cond, 1e-9)
	assert.InDelta(t, 100, pinv[1][1], 1e-9)
}

func TestParseMatrix(t *testing.T) {
	m, err := ParseMatrix("A")
	require.NoError(t, err)
	rows, cols := m.Shape()
	assert.Equal(t, 14, rows)
	assert.Equal(t, 14, cols)

	_, err = ParseMatrix("C")
	assert.Error(t, err)
}
