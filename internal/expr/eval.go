package expr

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dyngen/internal/dynamo"
)

// Env binds symbol names, and indexed constants by their canonical
// String() form (e.g. "J[1][1]"), to values.
type Env map[string]float64

// Eval reduces e to a float64. A symbol missing from env yields an
// *dynamo.UnresolvedSymbolError.
func Eval(e Expr, env Env) (float64, error) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), nil
	case *Sym:
		val, ok := env[v.name]
		if !ok {
			return 0, &dynamo.UnresolvedSymbolError{Name: v.name}
		}
		return val, nil
	case *Index:
		val, ok := env[v.String()]
		if !ok {
			return 0, &dynamo.UnresolvedSymbolError{Name: v.String()}
		}
		return val, nil
	case *Add:
		sum := 0.0
		for _, t := range v.terms {
			x, err := Eval(t, env)
			if err != nil {
				return 0, err
			}
			sum += x
		}
		return sum, nil
	case *Mul:
		c, _ := v.coeff.Float64()
		prod := c
		for _, f := range v.factors {
			x, err := Eval(f, env)
			if err != nil {
				return 0, err
			}
			prod *= x
		}
		return prod, nil
	case *Pow:
		b, err := Eval(v.base, env)
		if err != nil {
			return 0, err
		}
		switch v.exp {
		case -1:
			return 1 / b, nil
		case 2:
			return b * b, nil
		}
		return math.Pow(b, float64(v.exp)), nil
	case *Sqrt:
		a, err := Eval(v.arg, env)
		if err != nil {
			return 0, err
		}
		return math.Sqrt(a), nil
	}
	return 0, fmt.Errorf("expr: unknown node %T", e)
}

// Substitute replaces every symbol whose exact name is a key of repl and
// re-canonicalizes the result.
func Substitute(e Expr, repl map[string]Expr) Expr {
	switch v := e.(type) {
	case *Sym:
		if r, ok := repl[v.name]; ok {
			return r
		}
		return v
	case *Add:
		parts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			parts[i] = Substitute(t, repl)
		}
		return AddOf(parts...)
	case *Mul:
		parts := make([]Expr, 0, len(v.factors)+1)
		parts = append(parts, numOf(v.coeff))
		for _, f := range v.factors {
			parts = append(parts, Substitute(f, repl))
		}
		return MulOf(parts...)
	case *Pow:
		return PowOf(Substitute(v.base, repl), v.exp)
	case *Sqrt:
		return SqrtOf(Substitute(v.arg, repl))
	}
	return e
}

// FreeSymbols returns the sorted names of all symbols in e.
func FreeSymbols(e Expr) []string {
	set := map[string]struct{}{}
	walk(e, func(n Expr) {
		if s, ok := n.(*Sym); ok {
			set[s.name] = struct{}{}
		}
	})
	return sortedKeys(set)
}

// IndexRefs returns the sorted canonical forms of all indexed constants in e.
func IndexRefs(e Expr) []string {
	set := map[string]struct{}{}
	walk(e, func(n Expr) {
		if x, ok := n.(*Index); ok {
			set[x.String()] = struct{}{}
		}
	})
	return sortedKeys(set)
}

func walk(e Expr, fn func(Expr)) {
	fn(e)
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			walk(t, fn)
		}
	case *Mul:
		for _, f := range v.factors {
			walk(f, fn)
		}
	case *Pow:
		walk(v.base, fn)
	case *Sqrt:
		walk(v.arg, fn)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
