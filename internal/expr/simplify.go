package expr

import (
	"math/big"
	"sort"
)

// AddOf returns the canonical sum of terms.
func AddOf(terms ...Expr) Expr {
	constant := new(big.Rat)
	coeffs := map[string]*big.Rat{}
	rests := map[string]Expr{}

	var collect func(e Expr)
	collect = func(e Expr) {
		switch v := e.(type) {
		case *Num:
			constant.Add(constant, v.val)
		case *Add:
			for _, t := range v.terms {
				collect(t)
			}
		default:
			c, rest := splitCoeff(e)
			k := rest.String()
			if _, seen := coeffs[k]; !seen {
				coeffs[k] = new(big.Rat)
				rests[k] = rest
			}
			coeffs[k].Add(coeffs[k], c)
		}
	}
	for _, t := range terms {
		collect(t)
	}

	keys := make([]string, 0, len(coeffs))
	for k := range coeffs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Expr, 0, len(keys)+1)
	for _, k := range keys {
		c := coeffs[k]
		if c.Sign() == 0 {
			continue
		}
		out = append(out, scale(c, rests[k]))
	}
	if constant.Sign() != 0 {
		out = append(out, numOf(constant))
	}

	switch len(out) {
	case 0:
		return N(0)
	case 1:
		return out[0]
	}
	return newAdd(out)
}

// splitCoeff separates the rational coefficient of a term from the rest.
func splitCoeff(e Expr) (*big.Rat, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return one, e
	}
	if len(m.factors) == 1 {
		return m.coeff, m.factors[0]
	}
	return m.coeff, newMul(one, m.factors)
}

func scale(c *big.Rat, rest Expr) Expr {
	if c.Cmp(one) == 0 {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return newMul(c, m.factors)
	}
	return newMul(c, []Expr{rest})
}

// MulOf returns the canonical product of factors. A rational coefficient
// times a single sum is distributed over the sum.
func MulOf(factors ...Expr) Expr {
	coeff := new(big.Rat).SetInt64(1)
	exps := map[string]int{}
	bases := map[string]Expr{}

	var collect func(e Expr)
	collect = func(e Expr) {
		switch v := e.(type) {
		case *Num:
			coeff.Mul(coeff, v.val)
		case *Mul:
			coeff.Mul(coeff, v.coeff)
			for _, f := range v.factors {
				collect(f)
			}
		case *Pow:
			k := v.base.String()
			exps[k] += v.exp
			bases[k] = v.base
		default:
			k := e.String()
			exps[k]++
			bases[k] = e
		}
	}
	for _, f := range factors {
		collect(f)
	}
	if coeff.Sign() == 0 {
		return N(0)
	}

	keys := make([]string, 0, len(exps))
	for k := range exps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Expr, 0, len(keys))
	rebuild := false
	for _, k := range keys {
		n := exps[k]
		if n == 0 {
			continue
		}
		p := PowOf(bases[k], n)
		if baseKey(p) != k {
			rebuild = true
		}
		out = append(out, p)
	}
	if rebuild {
		return MulOf(append([]Expr{numOf(coeff)}, out...)...)
	}

	if len(out) == 0 {
		return numOf(coeff)
	}
	if len(out) == 1 {
		if coeff.Cmp(one) == 0 {
			return out[0]
		}
		if sum, ok := out[0].(*Add); ok {
			scaled := make([]Expr, len(sum.terms))
			for i, t := range sum.terms {
				scaled[i] = MulOf(numOf(coeff), t)
			}
			return AddOf(scaled...)
		}
	}
	return newMul(coeff, out)
}

// baseKey is the key a factor is collected under in MulOf; numerals and
// products report an empty key so they are always re-collected.
func baseKey(e Expr) string {
	switch v := e.(type) {
	case *Num, *Mul:
		return ""
	case *Pow:
		return v.base.String()
	}
	return e.String()
}

// PowOf returns base raised to the integer power n.
func PowOf(base Expr, n int) Expr {
	if n == 0 {
		return N(1)
	}
	if n == 1 {
		return base
	}
	switch b := base.(type) {
	case *Num:
		if b.IsZero() {
			if n < 0 {
				panic("expr: division by zero")
			}
			return N(0)
		}
		return &Num{val: ratPow(b.val, n)}
	case *Pow:
		return PowOf(b.base, b.exp*n)
	case *Mul:
		fs := make([]Expr, 0, len(b.factors)+1)
		fs = append(fs, &Num{val: ratPow(b.coeff, n)})
		for _, f := range b.factors {
			fs = append(fs, PowOf(f, n))
		}
		return MulOf(fs...)
	case *Sqrt:
		if n%2 == 0 {
			return PowOf(b.arg, n/2)
		}
	}
	return newPow(base, n)
}

func ratPow(r *big.Rat, n int) *big.Rat {
	base := new(big.Rat).Set(r)
	if n < 0 {
		base.Inv(base)
		n = -n
	}
	e := big.NewInt(int64(n))
	num := new(big.Int).Exp(base.Num(), e, nil)
	den := new(big.Int).Exp(base.Denom(), e, nil)
	return new(big.Rat).SetFrac(num, den)
}

// SqrtOf returns the principal square root, folding perfect rational squares.
func SqrtOf(a Expr) Expr {
	if n, ok := a.(*Num); ok && n.val.Sign() >= 0 {
		if n.IsZero() {
			return N(0)
		}
		num, den := n.val.Num(), n.val.Denom()
		sn, sd := new(big.Int).Sqrt(num), new(big.Int).Sqrt(den)
		if new(big.Int).Mul(sn, sn).Cmp(num) == 0 && new(big.Int).Mul(sd, sd).Cmp(den) == 0 {
			return &Num{val: new(big.Rat).SetFrac(sn, sd)}
		}
	}
	return &Sqrt{arg: a, key: "sqrt(" + a.String() + ")"}
}

func Neg(e Expr) Expr    { return MulOf(N(-1), e) }
func Sub(a, b Expr) Expr { return AddOf(a, Neg(b)) }
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, -1)) }
func Square(e Expr) Expr { return PowOf(e, 2) }

// Dot returns the sum of pairwise products of equal-length slices.
func Dot(a, b []Expr) Expr {
	terms := make([]Expr, len(a))
	for i := range a {
		terms[i] = MulOf(a[i], b[i])
	}
	return AddOf(terms...)
}
