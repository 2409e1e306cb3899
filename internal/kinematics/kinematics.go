package kinematics

import (
	"gonum.org/v1/gonum/mat"
)

// QuaternionRate returns Ω(w) such that dq/dt = ½·Ω(w)·q.
func QuaternionRate[T any](alg Algebra[T], w [3]T) [4][4]T {
	w0, w1, w2 := w[0], w[1], w[2]
	z := alg.Zero()

	return [4][4]T{
		{z, alg.Neg(w0), alg.Neg(w1), alg.Neg(w2)},
		{w0, z, w2, alg.Neg(w1)},
		{w1, alg.Neg(w2), z, w0},
		{w2, w1, alg.Neg(w0), z},
	}
}

// BodyToInertial returns the direction-cosine matrix taking body-frame
// vectors to the inertial frame. It is orthogonal only for unit q.
func BodyToInertial[T any](alg Algebra[T], q [4]T) [3][3]T {
	q0, q1, q2, q3 := q[0], q[1], q[2], q[3]
	one, two := alg.Const(1), alg.Const(2)

	sq := func(a T) T { return alg.Mul(a, a) }
	twice := func(a T) T { return alg.Mul(two, a) }
	diag := func(a, b T) T { return alg.Sub(one, twice(alg.Add(sq(a), sq(b)))) }

	var r [3][3]T
	r[0][0] = diag(q2, q3)
	r[0][1] = twice(alg.Add(alg.Mul(q1, q2), alg.Mul(q0, q3)))
	r[0][2] = twice(alg.Sub(alg.Mul(q1, q3), alg.Mul(q0, q2)))

	r[1][0] = twice(alg.Sub(alg.Mul(q1, q2), alg.Mul(q0, q3)))
	r[1][1] = diag(q1, q3)
	r[1][2] = twice(alg.Add(alg.Mul(q2, q3), alg.Mul(q0, q1)))

	r[2][0] = twice(alg.Add(alg.Mul(q1, q3), alg.Mul(q0, q2)))
	r[2][1] = twice(alg.Sub(alg.Mul(q2, q3), alg.Mul(q0, q1)))
	r[2][2] = diag(q1, q2)
	return r
}

// Cross returns a × b.
func Cross[T any](alg Algebra[T], a, b [3]T) [3]T {
	return [3]T{
		alg.Sub(alg.Mul(a[1], b[2]), alg.Mul(a[2], b[1])),
		alg.Sub(alg.Mul(a[2], b[0]), alg.Mul(a[0], b[2])),
		alg.Sub(alg.Mul(a[0], b[1]), alg.Mul(a[1], b[0])),
	}
}

// MatVec3 returns m·v for a 3×3 matrix.
func MatVec3[T any](alg Algebra[T], m [3][3]T, v [3]T) [3]T {
	var out [3]T
	for i := range out {
		acc := alg.Zero()
		for j := range v {
			acc = alg.Add(acc, alg.Mul(m[i][j], v[j]))
		}
		out[i] = acc
	}
	return out
}

// MatVec4 returns m·v for a 4×4 matrix.
func MatVec4[T any](alg Algebra[T], m [4][4]T, v [4]T) [4]T {
	var out [4]T
	for i := range out {
		acc := alg.Zero()
		for j := range v {
			acc = alg.Add(acc, alg.Mul(m[i][j], v[j]))
		}
		out[i] = acc
	}
	return out
}

func QuaternionRateDense(w [3]float64) *mat.Dense {
	om := QuaternionRate[float64](Numeric{}, w)
	return mat.NewDense(4, 4, flatten4(om))
}

func RotationDense(q [4]float64) *mat.Dense {
	r := BodyToInertial[float64](Numeric{}, q)
	return mat.NewDense(3, 3, []float64{
		r[0][0], r[0][1], r[0][2],
		r[1][0], r[1][1], r[1][2],
		r[2][0], r[2][1], r[2][2],
	})
}

func flatten4(m [4][4]float64) []float64 {
	out := make([]float64, 0, 16)
	for _, row := range m {
		out = append(out, row[:]...)
	}
	return out
}
