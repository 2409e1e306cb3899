package expr

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Expr is an immutable expression node.
type Expr interface {
	// String returns the canonical form, also used as the ordering key.
	String() string
	isExpr()
}

// ============================================================
// Num: exact rational literal
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("expr: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat converts a finite float64 exactly.
func NFloat(f float64) *Num {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		panic(fmt.Sprintf("expr: non-finite literal %v", f))
	}
	return &Num{val: r}
}

func numOf(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) isExpr() {}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) Rat() *big.Rat    { return new(big.Rat).Set(n.val) }
func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.Cmp(one) == 0 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }
func (n *Num) Float64() float64 { f, _ := n.val.Float64(); return f }

var (
	zero = new(big.Rat)
	one  = new(big.Rat).SetInt64(1)
)

// ============================================================
// Sym: named free symbol
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) isExpr()        {}
func (s *Sym) String() string { return s.name }
func (s *Sym) Name() string   { return s.name }

// Symbols returns one symbol per name, in order.
func Symbols(names ...string) []Expr {
	out := make([]Expr, len(names))
	for i, n := range names {
		out[i] = S(n)
	}
	return out
}

// ============================================================
// Index: element of a named matrix constant
// ============================================================

type Index struct {
	name     string
	row, col int
}

func Idx(name string, row, col int) *Index { return &Index{name: name, row: row, col: col} }

func (x *Index) isExpr() {}

func (x *Index) String() string {
	return x.name + "[" + strconv.Itoa(x.row) + "][" + strconv.Itoa(x.col) + "]"
}

func (x *Index) Name() string { return x.name }
func (x *Index) Row() int     { return x.row }
func (x *Index) Col() int     { return x.col }

// ============================================================
// Add: sum of at least two terms
// ============================================================

type Add struct {
	terms []Expr
	key   string
}

func (a *Add) isExpr()        {}
func (a *Add) String() string { return a.key }

func (a *Add) Terms() []Expr {
	out := make([]Expr, len(a.terms))
	copy(out, a.terms)
	return out
}

func newAdd(terms []Expr) *Add {
	keys := make([]string, len(terms))
	for i, t := range terms {
		keys[i] = t.String()
	}
	return &Add{terms: terms, key: "(" + strings.Join(keys, " + ") + ")"}
}

// ============================================================
// Mul: rational coefficient times ordered factors
// ============================================================

type Mul struct {
	coeff   *big.Rat
	factors []Expr
	key     string
}

func (m *Mul) isExpr()        {}
func (m *Mul) String() string { return m.key }

func (m *Mul) Coeff() *Num { return numOf(m.coeff) }

func (m *Mul) Factors() []Expr {
	out := make([]Expr, len(m.factors))
	copy(out, m.factors)
	return out
}

func newMul(coeff *big.Rat, factors []Expr) *Mul {
	var b strings.Builder
	if coeff.Cmp(one) != 0 {
		b.WriteString(numOf(coeff).String())
		b.WriteByte('*')
	}
	for i, f := range factors {
		if i > 0 {
			b.WriteByte('*')
		}
		b.WriteString(f.String())
	}
	return &Mul{coeff: new(big.Rat).Set(coeff), factors: factors, key: b.String()}
}

// ============================================================
// Pow: integer power of a non-numeric, non-product base
// ============================================================

type Pow struct {
	base Expr
	exp  int
	key  string
}

func (p *Pow) isExpr()        {}
func (p *Pow) String() string { return p.key }
func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exp() int       { return p.exp }

func newPow(base Expr, exp int) *Pow {
	return &Pow{base: base, exp: exp, key: base.String() + "^" + strconv.Itoa(exp)}
}

// ============================================================
// Sqrt: principal square root
// ============================================================

type Sqrt struct {
	arg Expr
	key string
}

func (s *Sqrt) isExpr()        {}
func (s *Sqrt) String() string { return s.key }
func (s *Sqrt) Arg() Expr      { return s.arg }

// IsZero reports whether e is the literal zero.
func IsZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}

// Equal reports structural equality of canonical forms.
func Equal(a, b Expr) bool { return a.String() == b.String() }
