package rocket

import (
	"fmt"

	"github.com/san-kum/dyngen/internal/expr"
)

// Linearize returns A = s·∂f/∂x and B = s·∂f/∂u. Differentiation is exact.
func Linearize(f, x, u []expr.Expr, s expr.Expr) (a, b [][]expr.Expr, err error) {
	xNames, err := symbolNames(x)
	if err != nil {
		return nil, nil, err
	}
	uNames, err := symbolNames(u)
	if err != nil {
		return nil, nil, err
	}

	a = scaled(expr.Jacobian(f, xNames), s)
	b = scaled(expr.Jacobian(f, uNames), s)
	return a, b, nil
}

func symbolNames(vars []expr.Expr) ([]string, error) {
	names := make([]string, len(vars))
	for i, v := range vars {
		sym, ok := v.(*expr.Sym)
		if !ok {
			return nil, fmt.Errorf("rocket: cannot differentiate with respect to %s", v)
		}
		names[i] = sym.Name()
	}
	return names, nil
}

func scaled(m [][]expr.Expr, s expr.Expr) [][]expr.Expr {
	for _, row := range m {
		for j := range row {
			row[j] = expr.MulOf(s, row[j])
		}
	}
	return m
}
