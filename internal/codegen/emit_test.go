package codegen

import (
	"testing"

	"github.com/san-kum/dyngen/internal/expr"
)

func TestEmit(t *testing.T) {
	a, b, c, m, x := expr.S("a"), expr.S("b"), expr.S("c"), expr.S("m"), expr.S("x")

	tests := []struct {
		name string
		in   expr.Expr
		want string
	}{
		{"symbol", x, "x"},
		{"integer", expr.N(3), "3"},
		{"negative integer", expr.N(-3), "-3"},
		{"fraction", expr.F(1, 4), "0.25"},
		{"decimal", expr.NFloat(0.1), "0.1"},
		{"index", expr.Idx("J", 1, 2), "J[1][2]"},
		{"difference", expr.Sub(a, b), "a - b"},
		{"leading negative", expr.Sub(expr.Neg(a), b), "-a - b"},
		{"constant term", expr.AddOf(x, expr.N(-1)), "x - 1"},
		{"scaled", expr.MulOf(expr.F(1, 2), x), "0.5*x"},
		{"distributed", expr.MulOf(expr.N(2), expr.AddOf(a, b)), "2*a + 2*b"},
		{"sum factor", expr.MulOf(x, expr.AddOf(a, b)), "(a + b)*x"},
		{"quotient", expr.Div(a, m), "a/m"},
		{"reciprocal", expr.PowOf(m, -1), "1/m"},
		{"reciprocal square", expr.PowOf(m, -2), "1/(m*m)"},
		{"quotient by sum", expr.Div(a, expr.AddOf(b, c)), "a/(b + c)"},
		{"quotient by product", expr.MulOf(a, expr.PowOf(b, -1), expr.PowOf(c, -1)), "a/(b*c)"},
		{"cube", expr.PowOf(x, 3), "x*x*x"},
		{"square of sum", expr.Square(expr.AddOf(a, b)), "(a + b)*(a + b)"},
		{"high power", expr.PowOf(x, 5), "math.Pow(x, 5)"},
		{"norm", expr.SqrtOf(expr.AddOf(expr.Square(a), expr.Square(b))), "math.Sqrt(a*a + b*b)"},
		{"negated quotient", expr.Sub(a, expr.Div(b, m)), "a - b/m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emit(tt.in); got != tt.want {
				t.Errorf("emit(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLowerRewritesInertiaOnly(t *testing.T) {
	e := expr.AddOf(expr.S("J01"), expr.S("J010"), expr.S("alpha"))
	got := lower([][]expr.Expr{{e}})[0][0]

	if refs := expr.IndexRefs(got); len(refs) != 1 || refs[0] != "J[0][1]" {
		t.Errorf("index refs = %v, want [J[0][1]]", refs)
	}
	syms := expr.FreeSymbols(got)
	if len(syms) != 2 || syms[0] != "J010" || syms[1] != "alpha" {
		t.Errorf("free symbols = %v, want [J010 alpha]", syms)
	}
}
