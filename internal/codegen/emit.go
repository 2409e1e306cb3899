package codegen

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/san-kum/dyngen/internal/expr"
)

// Precedence of an emitted Go expression.
const (
	precSum = iota + 1
	precProduct
	precAtom
)

// emit renders e as a Go float64 expression.
func emit(e expr.Expr) string {
	s, _ := emitPrec(e)
	return s
}

func emitPrec(e expr.Expr) (string, int) {
	switch v := e.(type) {
	case *expr.Num:
		s := literal(v.Rat())
		if v.IsNegative() {
			return s, precSum
		}
		return s, precAtom
	case *expr.Sym:
		return v.Name(), precAtom
	case *expr.Index:
		return fmt.Sprintf("%s[%d][%d]", v.Name(), v.Row(), v.Col()), precAtom
	case *expr.Sqrt:
		return "math.Sqrt(" + emit(v.Arg()) + ")", precAtom
	case *expr.Pow:
		return emitPow(v.Base(), v.Exp())
	case *expr.Mul:
		return emitMul(v.Coeff().Rat(), v.Factors())
	case *expr.Add:
		return emitAdd(v.Terms())
	}
	panic(fmt.Sprintf("codegen: unknown node %T", e))
}

func wrap(s string, prec, want int) string {
	if prec < want {
		return "(" + s + ")"
	}
	return s
}

// literal renders a rational as a Go float literal.
func literal(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	f, _ := r.Float64()
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// emitPow renders a positive power; negative powers are rendered as a
// reciprocal of the positive power.
func emitPow(base expr.Expr, n int) (string, int) {
	if n < 0 {
		den, prec := emitPow(base, -n)
		return "1/" + wrap(den, prec, precAtom), precProduct
	}
	b, prec := emitPrec(base)
	switch n {
	case 1:
		return b, prec
	case 2, 3:
		b = wrap(b, prec, precAtom)
		return strings.TrimSuffix(strings.Repeat(b+"*", n), "*"), precProduct
	}
	return fmt.Sprintf("math.Pow(%s, %d)", b, n), precAtom
}

func emitMul(coeff *big.Rat, factors []expr.Expr) (string, int) {
	neg := coeff.Sign() < 0
	mag := new(big.Rat).Abs(coeff)

	var num, den []string
	denPrec := precAtom
	if mag.Cmp(big.NewRat(1, 1)) != 0 {
		num = append(num, literal(mag))
	}
	for _, f := range factors {
		if p, ok := f.(*expr.Pow); ok && p.Exp() < 0 {
			s, prec := emitPow(p.Base(), -p.Exp())
			den = append(den, wrap(s, prec, precProduct))
			if prec == precProduct {
				denPrec = precProduct
			}
			continue
		}
		s, prec := emitPrec(f)
		num = append(num, wrap(s, prec, precProduct))
	}

	out := "1"
	if len(num) > 0 {
		out = strings.Join(num, "*")
	}
	switch {
	case len(den) == 1 && denPrec == precAtom:
		out += "/" + den[0]
	case len(den) > 0:
		out += "/(" + strings.Join(den, "*") + ")"
	}
	if neg {
		return "-" + out, precSum
	}
	return out, precProduct
}

func emitAdd(terms []expr.Expr) (string, int) {
	var b strings.Builder
	for i, t := range terms {
		s, negative := negated(t)
		switch {
		case i == 0 && negative:
			b.WriteString("-")
		case i > 0 && negative:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		if negative {
			s = wrap(s, precOf(t), precProduct)
		}
		b.WriteString(s)
	}
	return b.String(), precSum
}

// negated returns the rendering of |t| and whether t carries a negative
// sign that was stripped.
func negated(t expr.Expr) (string, bool) {
	switch v := t.(type) {
	case *expr.Num:
		if v.IsNegative() {
			return literal(new(big.Rat).Neg(v.Rat())), true
		}
	case *expr.Mul:
		c := v.Coeff().Rat()
		if c.Sign() < 0 {
			s, _ := emitMul(c.Neg(c), v.Factors())
			return s, true
		}
	}
	return emit(t), false
}

func precOf(t expr.Expr) int {
	switch t.(type) {
	case *expr.Num, *expr.Mul:
		return precProduct
	}
	_, p := emitPrec(t)
	return p
}
