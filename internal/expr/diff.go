package expr

import "fmt"

// Diff returns the exact partial derivative of e with respect to the
// symbol called name. Indexed constants are treated as constants.
func Diff(e Expr, name string) Expr {
	switch v := e.(type) {
	case *Num, *Index:
		return N(0)
	case *Sym:
		if v.name == name {
			return N(1)
		}
		return N(0)
	case *Add:
		parts := make([]Expr, 0, len(v.terms))
		for _, t := range v.terms {
			parts = append(parts, Diff(t, name))
		}
		return AddOf(parts...)
	case *Mul:
		parts := make([]Expr, 0, len(v.factors))
		for i := range v.factors {
			df := Diff(v.factors[i], name)
			if IsZero(df) {
				continue
			}
			fs := make([]Expr, 0, len(v.factors)+1)
			fs = append(fs, numOf(v.coeff))
			for j, g := range v.factors {
				if j == i {
					fs = append(fs, df)
				} else {
					fs = append(fs, g)
				}
			}
			parts = append(parts, MulOf(fs...))
		}
		return AddOf(parts...)
	case *Pow:
		db := Diff(v.base, name)
		if IsZero(db) {
			return N(0)
		}
		return MulOf(N(int64(v.exp)), PowOf(v.base, v.exp-1), db)
	case *Sqrt:
		da := Diff(v.arg, name)
		if IsZero(da) {
			return N(0)
		}
		return MulOf(F(1, 2), PowOf(v, -1), da)
	}
	panic(fmt.Sprintf("expr: unknown node %T", e))
}

// Jacobian differentiates each entry of f by each named variable.
func Jacobian(f []Expr, vars []string) [][]Expr {
	out := make([][]Expr, len(f))
	for i, fi := range f {
		row := make([]Expr, len(vars))
		for j, name := range vars {
			row[j] = Diff(fi, name)
		}
		out[i] = row
	}
	return out
}
