package kinematics

import "github.com/san-kum/dyngen/internal/expr"

// Algebra is the scalar arithmetic a builder is evaluated in.
type Algebra[T any] interface {
	Zero() T
	Const(v float64) T
	Neg(a T) T
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
}

// Symbolic builds canonical expressions.
type Symbolic struct{}

func (Symbolic) Zero() expr.Expr              { return expr.N(0) }
func (Symbolic) Const(v float64) expr.Expr    { return expr.NFloat(v) }
func (Symbolic) Neg(a expr.Expr) expr.Expr    { return expr.Neg(a) }
func (Symbolic) Add(a, b expr.Expr) expr.Expr { return expr.AddOf(a, b) }
func (Symbolic) Sub(a, b expr.Expr) expr.Expr { return expr.Sub(a, b) }
func (Symbolic) Mul(a, b expr.Expr) expr.Expr { return expr.MulOf(a, b) }

// Numeric evaluates directly in float64.
type Numeric struct{}

func (Numeric) Zero() float64            { return 0 }
func (Numeric) Const(v float64) float64  { return v }
func (Numeric) Neg(a float64) float64    { return -a }
func (Numeric) Add(a, b float64) float64 { return a + b }
func (Numeric) Sub(a, b float64) float64 { return a - b }
func (Numeric) Mul(a, b float64) float64 { return a * b }
