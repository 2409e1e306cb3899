package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/expr"
	"github.com/san-kum/dyngen/internal/rocket"
)

type writer struct {
	buf bytes.Buffer
}

func (w *writer) printf(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
}

func (w *writer) preamble(pkg string) {
	w.printf(preamble, pkg, pkg, pkg, pkg, pkg, pkg, pkg, pkg, pkg, pkg,
		dynamo.StateDim, dynamo.ControlDim, pkg, dynamo.StateDim, dynamo.ControlDim)
}

// evaluator emits the method for m. Only referenced inputs and constants
// are unpacked so the function compiles without unused variables.
func (w *writer) evaluator(m rocket.Matrix, rows [][]expr.Expr) {
	used := map[string]bool{}
	indexed := false
	for _, row := range rows {
		for _, e := range row {
			for _, name := range expr.FreeSymbols(e) {
				used[name] = true
			}
			if len(expr.IndexRefs(e)) > 0 {
				indexed = true
			}
		}
	}

	switch m {
	case rocket.MatrixF:
		w.printf("\n// F returns the state derivative f(x, u).\n")
		w.printf("func (d *Dynamics) F(x, u []float64) []float64 {\n")
	case rocket.MatrixA:
		w.printf("\n// A returns the state Jacobian of f scaled by s.\n")
		w.printf("func (d *Dynamics) A(x, u []float64, s float64) [][]float64 {\n")
	case rocket.MatrixB:
		w.printf("\n// B returns the control Jacobian of f scaled by s.\n")
		w.printf("func (d *Dynamics) B(x, u []float64, s float64) [][]float64 {\n")
	}
	w.printf("d.check(x, u)\n")

	w.unpack(rocket.StateNames[:], "x[%d]", used)
	w.unpack(rocket.ControlNames[:], "u[%d]", used)
	w.unpack([]string{rocket.AlphaName}, "d.alpha", used)
	w.unpack(rocket.RTBNames[:], "d.rTB[%d]", used)
	w.unpack(rocket.GravityNames[:], "d.g[%d]", used)
	if indexed {
		w.printf("%s := d.J\n", rocket.InertiaName)
	}

	rowsN, colsN := m.Shape()
	if m == rocket.MatrixF {
		w.printf("\nout := make([]float64, %d)\n", rowsN)
		for i, row := range rows {
			if !expr.IsZero(row[0]) {
				w.printf("out[%d] = %s\n", i, emit(row[0]))
			}
		}
	} else {
		w.printf("\nout := newMatrix(%d, %d)\n", rowsN, colsN)
		for i, row := range rows {
			for j, e := range row {
				if !expr.IsZero(e) {
					w.printf("out[%d][%d] = %s\n", i, j, emit(e))
				}
			}
		}
	}
	w.printf("return out\n}\n")
}

// unpack emits a single multi-assignment of the referenced names; the
// format either takes the position or is a plain field read.
func (w *writer) unpack(names []string, src string, used map[string]bool) {
	var lhs, rhs []string
	referenced := false
	for i, name := range names {
		if used[name] {
			lhs = append(lhs, name)
			referenced = true
		} else {
			lhs = append(lhs, "_")
		}
		if strings.Contains(src, "%d") {
			rhs = append(rhs, fmt.Sprintf(src, i))
		} else {
			rhs = append(rhs, src)
		}
	}
	if !referenced {
		return
	}
	w.printf("%s := %s\n", strings.Join(lhs, ", "), strings.Join(rhs, ", "))
}

const preamble = `package %s

import (
	"fmt"
	"math"
)

// Constants are the physical constants of the vehicle.
type Constants struct {
	Alpha float64
	RTB   [3]float64
	J     [3][3]float64
	G     [3]float64
}

// Dynamics evaluates f, A and B for one set of constants. The evaluators
// panic until constants have been configured.
type Dynamics struct {
	alpha      float64
	rTB        [3]float64
	J          [3][3]float64
	g          [3]float64
	configured bool
}

// New returns a Dynamics configured with c.
func New(c Constants) (*Dynamics, error) {
	d := &Dynamics{}
	if err := d.Configure(c); err != nil {
		return nil, err
	}
	return d, nil
}

// Configure replaces the constants. All values must be finite and alpha
// positive.
func (d *Dynamics) Configure(c Constants) error {
	vals := []float64{c.Alpha}
	vals = append(vals, c.RTB[:]...)
	for _, row := range c.J {
		vals = append(vals, row[:]...)
	}
	vals = append(vals, c.G[:]...)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: non-finite constant %%v", v)
		}
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("%s: alpha must be positive, got %%v", c.Alpha)
	}
	d.alpha, d.rTB, d.J, d.g = c.Alpha, c.RTB, c.J, c.G
	d.configured = true
	return nil
}

// SetParameters configures from a mapping with exactly the keys alpha,
// rTB, J and g.
func (d *Dynamics) SetParameters(params map[string]any) error {
	for key := range params {
		switch key {
		case "alpha", "rTB", "J", "g":
		default:
			return fmt.Errorf("%s: unknown parameter %%q", key)
		}
	}
	for _, key := range []string{"alpha", "rTB", "J", "g"} {
		if _, present := params[key]; !present {
			return fmt.Errorf("%s: missing parameter %%q", key)
		}
	}
	var (
		c  Constants
		ok bool
	)
	if c.Alpha, ok = params["alpha"].(float64); !ok {
		return fmt.Errorf("%s: parameter %%q must be float64", "alpha")
	}
	if c.RTB, ok = params["rTB"].([3]float64); !ok {
		return fmt.Errorf("%s: parameter %%q must be [3]float64", "rTB")
	}
	if c.J, ok = params["J"].([3][3]float64); !ok {
		return fmt.Errorf("%s: parameter %%q must be [3][3]float64", "J")
	}
	if c.G, ok = params["g"].([3]float64); !ok {
		return fmt.Errorf("%s: parameter %%q must be [3]float64", "g")
	}
	return d.Configure(c)
}

func (d *Dynamics) check(x, u []float64) {
	if !d.configured {
		panic("%s: dynamics not configured")
	}
	if len(x) != %d || len(u) != %d {
		panic(fmt.Sprintf("%s: got state of length %%d and control of length %%d, want %d and %d", len(x), len(u)))
	}
}

func newMatrix(rows, cols int) [][]float64 {
	data := make([]float64, rows*cols)
	out := make([][]float64, rows)
	for i := range out {
		out[i] = data[i*cols : (i+1)*cols]
	}
	return out
}
`
