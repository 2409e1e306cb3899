// Package expr is a small exact symbolic kernel: rational literals, named
// symbols, indexed constant references, sums, products, integer powers and
// square roots.
//
// Every constructor returns a canonical form. Sums and products are
// flattened, numerals are folded, like terms and like bases are collected
// and operands are ordered by their canonical string, so two expressions are
// structurally equal exactly when their String() values are equal and the
// result never depends on construction order.
//
//	x := expr.S("x")
//	e := expr.AddOf(expr.MulOf(expr.N(2), x), x) // 3*x
//	d := expr.Diff(e, "x")                       // 3
//
// Zero tests are symbolic: [IsZero] reports only the literal 0.
package expr
